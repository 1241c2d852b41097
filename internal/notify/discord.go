// Package notify forwards content-mutation events to the configured
// Discord-compatible webhooks.  Delivery is best-effort and asynchronous
// relative to the client-facing request: callers invoke the methods in a
// goroutine, failures are logged and swallowed, and a missing webhook URL
// for a kind is a no-op.  Nothing in this package ever surfaces to the end
// user or rolls back a store mutation.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/brotherhood/platform/internal/authz"
	"github.com/brotherhood/platform/internal/model"
)

// deliveryTimeout bounds one webhook POST so a slow endpoint cannot
// accumulate unbounded in-flight sends.
const deliveryTimeout = 5 * time.Second

// textPayload is the plain-text webhook body used for feed posts and chat
// messages.
type textPayload struct {
	Content    string `json:"content"`
	ThreadName string `json:"thread_name,omitempty"`
}

// embed and embedPayload form the structured body used for announcements.
type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

type embedPayload struct {
	Embeds []embed `json:"embeds"`
}

// SettingSource yields the stored webhook URL for a setting key.  The
// repository's SettingRepo satisfies it.
type SettingSource interface {
	Get(ctx context.Context, key string) (string, error)
}

// Notifier posts payloads to the webhook URLs stored in app settings.  The
// URLs are re-read on every send so configuration changes take effect
// without a restart.
type Notifier struct {
	Settings SettingSource
	client   *http.Client
}

func New(settings SettingSource) *Notifier {
	return &Notifier{
		Settings: settings,
		client:   &http.Client{Timeout: deliveryTimeout},
	}
}

// FeedPost announces a new feed post as plain text, decorated with the
// author's rank emoji when they hold one.
func (n *Notifier) FeedPost(post model.Post, authorName, authorRole string) {
	n.deliver(model.SettingWebhookFeed, textPayload{
		Content: fmt.Sprintf("%s posted:\n%s", decorate(authorName, authorRole), post.Content),
	})
}

// Announcement posts a structured embed colored by the author's rank.
func (n *Notifier) Announcement(post model.Post, authorName, authorRole string) {
	color := 0x5865F2 // Discord blurple when the author holds no rank
	if info, ok := authz.LookupRole(authorRole); ok {
		color = info.EmbedColor
	}
	title := post.Title
	if title == "" {
		title = "Announcement"
	}
	n.deliver(model.SettingWebhookAnnouncement, embedPayload{
		Embeds: []embed{{
			Title:       title,
			Description: post.Content,
			Color:       color,
			Timestamp:   post.CreatedAt.UTC().Format(time.RFC3339),
		}},
	})
}

// ChatMessage mirrors a chat message as plain text with rank decoration.
func (n *Notifier) ChatMessage(msg model.ChatMessage, authorName, authorRole string) {
	n.deliver(model.SettingWebhookChat, textPayload{
		Content: fmt.Sprintf("%s: %s", decorate(authorName, authorRole), msg.Content),
	})
}

// decorate prefixes a display name with the rank emoji from the single
// role lookup table.
func decorate(name, role string) string {
	if info, ok := authz.LookupRole(role); ok {
		return info.Emoji + " " + name
	}
	return name
}

// deliver looks up the webhook URL for the given setting key and posts the
// payload.  Every failure path logs and returns; there is nobody upstream
// to report to.
func (n *Notifier) deliver(settingKey string, payload interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	url, err := n.Settings.Get(ctx, settingKey)
	if err != nil {
		log.Printf("discord: load %s failed: %v", settingKey, err)
		return
	}
	if url == "" {
		return // not configured, nothing to do
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("discord: marshal payload for %s failed: %v", settingKey, err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("discord: build request for %s failed: %v", settingKey, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("discord: post to %s failed: %v", settingKey, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("discord: post to %s returned status %d", settingKey, resp.StatusCode)
	}
}
