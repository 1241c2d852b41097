package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brotherhood/platform/internal/authz"
	"github.com/brotherhood/platform/internal/model"
)

// mapSettings is an in-memory SettingSource for tests.
type mapSettings map[string]string

func (m mapSettings) Get(_ context.Context, key string) (string, error) {
	return m[key], nil
}

// failingSettings always errors, standing in for an unreachable store.
type failingSettings struct{}

func (failingSettings) Get(context.Context, string) (string, error) {
	return "", errors.New("store down")
}

// captureServer records every webhook body it receives.
func captureServer(t *testing.T, status int) (*httptest.Server, *[][]byte) {
	t.Helper()
	var bodies [][]byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		bodies = append(bodies, body)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func TestFeedPostPayload(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusNoContent)
	n := New(mapSettings{model.SettingWebhookFeed: srv.URL})

	n.FeedPost(model.Post{Content: "hello world"}, "Alice", authz.RoleGeneral)

	require.Len(t, *bodies, 1)
	var got textPayload
	require.NoError(t, json.Unmarshal((*bodies)[0], &got))

	info, _ := authz.LookupRole(authz.RoleGeneral)
	assert.Equal(t, info.Emoji+" Alice posted:\nhello world", got.Content)
}

func TestFeedPostWithoutRankOmitsEmoji(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusOK)
	n := New(mapSettings{model.SettingWebhookFeed: srv.URL})

	n.FeedPost(model.Post{Content: "plain"}, "Bob", "")

	require.Len(t, *bodies, 1)
	var got textPayload
	require.NoError(t, json.Unmarshal((*bodies)[0], &got))
	assert.Equal(t, "Bob posted:\nplain", got.Content)
}

func TestAnnouncementEmbed(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusNoContent)
	n := New(mapSettings{model.SettingWebhookAnnouncement: srv.URL})

	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n.Announcement(model.Post{
		Title:     "Maintenance window",
		Content:   "Down at midnight.",
		CreatedAt: created,
	}, "Alice", authz.RoleSupremeLeader)

	require.Len(t, *bodies, 1)
	var got embedPayload
	require.NoError(t, json.Unmarshal((*bodies)[0], &got))
	require.Len(t, got.Embeds, 1)

	info, _ := authz.LookupRole(authz.RoleSupremeLeader)
	assert.Equal(t, "Maintenance window", got.Embeds[0].Title)
	assert.Equal(t, "Down at midnight.", got.Embeds[0].Description)
	assert.Equal(t, info.EmbedColor, got.Embeds[0].Color)
	assert.Equal(t, "2024-06-01T12:00:00Z", got.Embeds[0].Timestamp)
}

func TestAnnouncementDefaults(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusNoContent)
	n := New(mapSettings{model.SettingWebhookAnnouncement: srv.URL})

	n.Announcement(model.Post{Content: "untitled"}, "Bob", "")

	require.Len(t, *bodies, 1)
	var got embedPayload
	require.NoError(t, json.Unmarshal((*bodies)[0], &got))
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Announcement", got.Embeds[0].Title, "empty title falls back")
	assert.Equal(t, 0x5865F2, got.Embeds[0].Color, "rankless author gets the default color")
}

func TestChatMessagePayload(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusOK)
	n := New(mapSettings{model.SettingWebhookChat: srv.URL})

	n.ChatMessage(model.ChatMessage{Content: "o7"}, "Carol", authz.RoleCaptain)

	require.Len(t, *bodies, 1)
	var got textPayload
	require.NoError(t, json.Unmarshal((*bodies)[0], &got))

	info, _ := authz.LookupRole(authz.RoleCaptain)
	assert.Equal(t, info.Emoji+" Carol: o7", got.Content)
}

func TestUnconfiguredURLIsNoOp(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusOK)
	_ = srv // URL deliberately not stored
	n := New(mapSettings{})

	n.FeedPost(model.Post{Content: "nobody hears this"}, "Alice", "")
	n.ChatMessage(model.ChatMessage{Content: "nor this"}, "Alice", "")

	assert.Empty(t, *bodies)
}

func TestDeliveryFailuresAreSwallowed(t *testing.T) {
	// None of these may panic or surface an error to the caller.
	t.Run("server error status", func(t *testing.T) {
		srv, bodies := captureServer(t, http.StatusInternalServerError)
		n := New(mapSettings{model.SettingWebhookFeed: srv.URL})
		n.FeedPost(model.Post{Content: "x"}, "Alice", "")
		assert.Len(t, *bodies, 1)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		n := New(mapSettings{model.SettingWebhookFeed: "http://127.0.0.1:1/webhook"})
		n.FeedPost(model.Post{Content: "x"}, "Alice", "")
	})

	t.Run("settings store down", func(t *testing.T) {
		n := New(failingSettings{})
		n.FeedPost(model.Post{Content: "x"}, "Alice", "")
	})
}
