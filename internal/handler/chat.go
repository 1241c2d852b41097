package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brotherhood/platform/internal/authz"
	"github.com/brotherhood/platform/internal/hub"
	"github.com/brotherhood/platform/internal/middleware"
	"github.com/brotherhood/platform/internal/notify"
	"github.com/brotherhood/platform/internal/queue"
	"github.com/brotherhood/platform/internal/repository"
	event_publisher "github.com/brotherhood/platform/internal/service"
)

// ChatHandler bundles dependencies for the shared chat room.  The hub is
// injected so tests can run the handler against an isolated registry.
type ChatHandler struct {
	Chat     *repository.ChatRepo
	Hub      *hub.Hub
	Notifier *notify.Notifier
}

func NewChatHandler(chat *repository.ChatRepo, h *hub.Hub, n *notify.Notifier) *ChatHandler {
	return &ChatHandler{Chat: chat, Hub: h, Notifier: n}
}

type createChatReq struct {
	Content string   `json:"content"`
	FileIDs []string `json:"file_ids"`
}

type chatMessageResp struct {
	ID        uint64         `json:"id"`
	Author    postAuthorPart `json:"author"`
	Content   string         `json:"content"`
	FileIDs   []string       `json:"file_ids"`
	CreatedAt time.Time      `json:"created_at"`
}

func toChatResp(m repository.ChatMessageWithAuthor) chatMessageResp {
	author := postAuthorPart{ID: m.AuthorID, Name: m.AuthorName, AvatarURL: m.AuthorAvatar, Role: m.AuthorRole}
	if info, ok := authz.LookupRole(m.AuthorRole); ok {
		author.RoleColor = info.DisplayColor
	}
	return chatMessageResp{
		ID:        m.ID,
		Author:    author,
		Content:   m.Content,
		FileIDs:   splitFileIDs(m.FileIDs),
		CreatedAt: m.CreatedAt,
	}
}

// List handles GET /v1/chat/messages, chronological.
func (h *ChatHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := requestContext(c)
	defer cancel()

	msgs, err := h.Chat.ListRecent(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]chatMessageResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toChatResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/chat/messages.  The message is persisted first;
// only after the committed write does it fan out to live connections, the
// chat webhook and the broker.  None of those outcomes reach this
// response.
func (h *ChatHandler) Create(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createChatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.Chat.Create(ctx, actor.ID, req.Content, joinFileIDs(req.FileIDs))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create message failed"})
	}

	resp := toChatResp(msg)
	h.Hub.Broadcast("chat_message", resp)
	go h.Notifier.ChatMessage(msg.ChatMessage, msg.AuthorName, msg.AuthorRole)
	go func() {
		_ = event_publisher.PublishContentEvent(context.Background(), queue.ContentEvent{
			Kind:       "chat",
			ID:         msg.ID,
			AuthorID:   actor.ID,
			AuthorName: actor.Name,
			Summary:    summarize(msg.Content),
			CreatedAt:  msg.CreatedAt.UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, resp)
}

// Delete handles DELETE /v1/chat/messages/:id.  Chat moderation requires
// unlocked admin access.
func (h *ChatHandler) Delete(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !authz.CanDeleteChatMessage(actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Chat.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
