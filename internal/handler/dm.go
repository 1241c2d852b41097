package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brotherhood/platform/internal/authz"
	"github.com/brotherhood/platform/internal/middleware"
	"github.com/brotherhood/platform/internal/model"
	"github.com/brotherhood/platform/internal/repository"
)

// DMHandler bundles dependencies for direct messages.
type DMHandler struct {
	DMs   *repository.DMRepo
	Users *repository.UserRepo
}

func NewDMHandler(d *repository.DMRepo, u *repository.UserRepo) *DMHandler {
	return &DMHandler{DMs: d, Users: u}
}

type sendDMReq struct {
	Content string `json:"content"`
}

type dmResp struct {
	ID          uint64    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDMResp(m model.DirectMessage) dmResp {
	return dmResp{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
	}
}

// Conversation handles GET /v1/dm/:userID: every message between the actor
// and the named user, oldest first.
func (h *DMHandler) Conversation(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	otherID := c.Param("userID")

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, otherID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	msgs, err := h.DMs.Conversation(ctx, actor.ID, otherID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]dmResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toDMResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Send handles POST /v1/dm/:userID.
func (h *DMHandler) Send(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	recipientID := c.Param("userID")
	if recipientID == actor.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot message yourself"})
	}
	var req sendDMReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, recipientID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	id, err := h.DMs.Create(ctx, actor.ID, recipientID, req.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Delete handles DELETE /v1/dm/messages/:id.  Only the sender may delete a
// direct message.
func (h *DMHandler) Delete(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.DMs.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !authz.CanDeleteDirectMessage(actor, &msg) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.DMs.Delete(ctx, id); err != nil && err != sql.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
