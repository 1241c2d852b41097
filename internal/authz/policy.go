// Package authz holds the pure authorization decision functions.  Each
// function takes the acting user plus whatever resource metadata the rule
// needs and returns a plain bool; no caching, no I/O.  Handlers evaluate
// these fresh on every request and translate a false into HTTP 403.
package authz

import "github.com/brotherhood/platform/internal/model"

// CanCreateAdminPost: announcements require the owner flag or unlocked
// admin access.
func CanCreateAdminPost(actor *model.User) bool {
    return actor.IsOwner || actor.HasAdminAccess
}

// CanDeletePost: the author may delete their own post; the owner may delete
// any post.
func CanDeletePost(actor *model.User, post *model.Post) bool {
    return actor.ID == post.AuthorID || actor.IsOwner
}

// CanDeleteComment mirrors the post rule: author or owner.
func CanDeleteComment(actor *model.User, comment *model.Comment) bool {
    return actor.ID == comment.AuthorID || actor.IsOwner
}

// CanDeleteChatMessage: chat moderation requires unlocked admin access.
func CanDeleteChatMessage(actor *model.User) bool {
    return actor.HasAdminAccess
}

// CanDeleteDirectMessage: only the sender may delete a DM.
func CanDeleteDirectMessage(actor *model.User, msg *model.DirectMessage) bool {
    return actor.ID == msg.SenderID
}

// CanDeleteFile: the uploader or an admin-access holder.
func CanDeleteFile(actor *model.User, file *model.UploadedFile) bool {
    return actor.ID == file.UploadedBy || actor.HasAdminAccess
}

// CanManageRoles: grant/revoke of named ranks.  Deliberately flat — an
// admin-access holder may grant any rank, including the highest, to anyone
// including themselves.
func CanManageRoles(actor *model.User) bool {
    return actor.IsOwner || actor.HasAdminAccess
}

// CanSetAdminPassword: only the platform owner may set or rotate the shared
// admin password.
func CanSetAdminPassword(actor *model.User) bool {
    return actor.IsOwner
}

// CanManageWebhooks: Discord webhook configuration is open to the owner and
// to holders of the highest rank.
func CanManageWebhooks(actor *model.User) bool {
    return actor.IsOwner || actor.Role == RoleSupremeLeader
}
