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
	"github.com/brotherhood/platform/internal/repository"
)

// CommentHandler bundles dependencies for the comment endpoints.
type CommentHandler struct {
	Posts    *repository.PostRepo
	Comments *repository.CommentRepo
}

func NewCommentHandler(p *repository.PostRepo, cm *repository.CommentRepo) *CommentHandler {
	return &CommentHandler{Posts: p, Comments: cm}
}

type createCommentReq struct {
	Content string `json:"content"`
}

type commentResp struct {
	ID        uint64         `json:"id"`
	PostID    uint64         `json:"post_id"`
	Author    postAuthorPart `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// List handles GET /v1/posts/:id/comments, oldest first.
func (h *CommentHandler) List(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Posts.GetByID(ctx, postID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	comments, err := h.Comments.ListByPost(ctx, postID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		author := postAuthorPart{ID: cm.AuthorID, Name: cm.AuthorName, AvatarURL: cm.AuthorAvatar, Role: cm.AuthorRole}
		if info, ok := authz.LookupRole(cm.AuthorRole); ok {
			author.RoleColor = info.DisplayColor
		}
		out = append(out, commentResp{
			ID:        cm.ID,
			PostID:    cm.PostID,
			Author:    author,
			Content:   cm.Content,
			CreatedAt: cm.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/posts/:id/comments.
func (h *CommentHandler) Create(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req createCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Posts.GetByID(ctx, postID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	id, err := h.Comments.Create(ctx, postID, actor.ID, req.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Delete handles DELETE /v1/comments/:id.  The comment's author or the
// owner may delete it; only that comment is removed.
func (h *CommentHandler) Delete(c echo.Context) error {
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

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !authz.CanDeleteComment(actor, &cm) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Comments.Delete(ctx, id); err != nil && err != sql.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
