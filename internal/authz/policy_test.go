package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brotherhood/platform/internal/model"
)

func TestCanCreateAdminPost(t *testing.T) {
	assert.True(t, CanCreateAdminPost(&model.User{IsOwner: true}))
	assert.True(t, CanCreateAdminPost(&model.User{HasAdminAccess: true}))
	assert.False(t, CanCreateAdminPost(&model.User{Role: RoleSupremeLeader}))
	assert.False(t, CanCreateAdminPost(&model.User{}))
}

func TestCanDeletePost(t *testing.T) {
	post := &model.Post{ID: 1, AuthorID: "alice"}

	assert.True(t, CanDeletePost(&model.User{ID: "alice"}, post), "author deletes own post")
	assert.True(t, CanDeletePost(&model.User{ID: "bob", IsOwner: true}, post), "owner deletes any post")
	assert.False(t, CanDeletePost(&model.User{ID: "bob", HasAdminAccess: true}, post),
		"admin access alone does not cover post deletion")
}

func TestCanDeleteComment(t *testing.T) {
	cm := &model.Comment{ID: 7, AuthorID: "alice"}

	assert.True(t, CanDeleteComment(&model.User{ID: "alice"}, cm))
	assert.True(t, CanDeleteComment(&model.User{ID: "bob", IsOwner: true}, cm))
	assert.False(t, CanDeleteComment(&model.User{ID: "bob"}, cm))
}

func TestCanDeleteChatMessage(t *testing.T) {
	assert.True(t, CanDeleteChatMessage(&model.User{HasAdminAccess: true}))
	// The owner flag does not imply chat moderation on its own.
	assert.False(t, CanDeleteChatMessage(&model.User{IsOwner: true}))
	assert.False(t, CanDeleteChatMessage(&model.User{}))
}

func TestCanDeleteDirectMessage(t *testing.T) {
	msg := &model.DirectMessage{SenderID: "alice", RecipientID: "bob"}

	assert.True(t, CanDeleteDirectMessage(&model.User{ID: "alice"}, msg))
	assert.False(t, CanDeleteDirectMessage(&model.User{ID: "bob"}, msg), "recipient cannot delete")
	assert.False(t, CanDeleteDirectMessage(&model.User{ID: "carol", IsOwner: true}, msg),
		"not even the owner deletes someone else's DM")
}

func TestCanDeleteFile(t *testing.T) {
	file := &model.UploadedFile{ID: "f1", UploadedBy: "alice"}

	assert.True(t, CanDeleteFile(&model.User{ID: "alice"}, file))
	assert.True(t, CanDeleteFile(&model.User{ID: "bob", HasAdminAccess: true}, file))
	assert.False(t, CanDeleteFile(&model.User{ID: "bob"}, file))
}

func TestCanManageRolesIsFlat(t *testing.T) {
	// Role grants are deliberately non-hierarchical: admin access suffices,
	// rank held by the actor is irrelevant.
	assert.True(t, CanManageRoles(&model.User{IsOwner: true}))
	assert.True(t, CanManageRoles(&model.User{HasAdminAccess: true}))
	assert.False(t, CanManageRoles(&model.User{Role: RoleSupremeLeader}))
}

func TestCanSetAdminPassword(t *testing.T) {
	assert.True(t, CanSetAdminPassword(&model.User{IsOwner: true}))
	assert.False(t, CanSetAdminPassword(&model.User{HasAdminAccess: true}))
}

func TestCanManageWebhooks(t *testing.T) {
	assert.True(t, CanManageWebhooks(&model.User{IsOwner: true}))
	assert.True(t, CanManageWebhooks(&model.User{Role: RoleSupremeLeader}))
	assert.False(t, CanManageWebhooks(&model.User{Role: RoleGeneral}))
	assert.False(t, CanManageWebhooks(&model.User{HasAdminAccess: true}))
}

func TestRoleTable(t *testing.T) {
	for _, role := range Roles() {
		info, ok := LookupRole(role)
		assert.True(t, ok, role)
		assert.NotEmpty(t, info.DisplayColor, role)
		assert.NotZero(t, info.EmbedColor, role)
		assert.NotEmpty(t, info.Emoji, role)
	}
	_, ok := LookupRole("")
	assert.False(t, ok, "empty role has no table entry")
	assert.False(t, ValidRole("Archduke"))
}
