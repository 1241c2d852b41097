package model

// Setting keys stored in the app_settings table.  One row per key, upsert
// semantics.  The admin password is stored as a bcrypt hash, never in the
// clear.
const (
    SettingAdminPasswordHash   = "admin_password_hash"
    SettingWebhookFeed         = "webhook_feed"
    SettingWebhookAnnouncement = "webhook_announcement"
    SettingWebhookChat         = "webhook_chat"
)
