package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Identities are issued by the external identity provider, so the
// primary key is the provider's subject string rather than an
// auto-increment integer.  IsOwner is never written from client input; it
// is recomputed from the owner email allow-list on every identity sync.
//
// Fields:
//  ID             – stable identifier issued by the identity provider.
//  Email          – unique, lower-cased email address.
//  Name           – display name, refreshed on every sync.
//  AvatarURL      – optional avatar image URL.
//  IsOwner        – derived from the owner email allow-list.
//  HasAdminAccess – granted by consuming the shared admin password.
//  Role           – named rank, empty string when the user holds none.
//  CreatedAt      – timestamp of first sync.
type User struct {
    ID             string    // users.id
    Email          string    // users.email
    Name           string    // users.name
    AvatarURL      string    // users.avatar_url
    IsOwner        bool      // users.is_owner
    HasAdminAccess bool      // users.has_admin_access
    Role           string    // users.role (nullable, '' when absent)
    CreatedAt      time.Time // users.created_at
}
