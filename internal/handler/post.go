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
	"github.com/brotherhood/platform/internal/middleware"
	"github.com/brotherhood/platform/internal/model"
	"github.com/brotherhood/platform/internal/notify"
	"github.com/brotherhood/platform/internal/queue"
	"github.com/brotherhood/platform/internal/repository"
	event_publisher "github.com/brotherhood/platform/internal/service"
)

// PostHandler bundles dependencies for the feed and announcement endpoints.
type PostHandler struct {
	Posts    *repository.PostRepo
	Notifier *notify.Notifier
}

func NewPostHandler(p *repository.PostRepo, n *notify.Notifier) *PostHandler {
	return &PostHandler{Posts: p, Notifier: n}
}

// ----- DTOs -----

type createPostReq struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	IsAdminPost bool     `json:"is_admin_post"`
	FileIDs     []string `json:"file_ids"`
}

type postAuthorPart struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
	RoleColor string `json:"role_color,omitempty"`
}

type postResp struct {
	ID            uint64         `json:"id"`
	Author        postAuthorPart `json:"author"`
	Title         string         `json:"title,omitempty"`
	Content       string         `json:"content"`
	IsAdminPost   bool           `json:"is_admin_post"`
	FileIDs       []string       `json:"file_ids"`
	LikesCount    int            `json:"likes_count"`
	CommentsCount int            `json:"comments_count"`
	IsLiked       bool           `json:"is_liked"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toPostResp(p repository.PostWithMeta) postResp {
	author := postAuthorPart{ID: p.AuthorID, Name: p.AuthorName, AvatarURL: p.AuthorAvatar, Role: p.AuthorRole}
	if info, ok := authz.LookupRole(p.AuthorRole); ok {
		author.RoleColor = info.DisplayColor
	}
	return postResp{
		ID:            p.ID,
		Author:        author,
		Title:         p.Title,
		Content:       p.Content,
		IsAdminPost:   p.IsAdminPost,
		FileIDs:       splitFileIDs(p.FileIDs),
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		IsLiked:       p.LikedByViewer,
		CreatedAt:     p.CreatedAt,
	}
}

// List handles GET /v1/posts.  ?admin=true selects announcements; limit
// and before page through the feed newest-first.
func (h *PostHandler) List(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	adminPosts := c.QueryParam("admin") == "true"
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	before, _ := strconv.ParseUint(c.QueryParam("before"), 10, 64)

	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.Posts.List(ctx, actor.ID, adminPosts, limit, before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]postResp, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResp(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/posts.  Announcements require the admin-post
// capability; the store write commits before any webhook or broker side
// channel fires.
func (h *PostHandler) Create(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	req.Title = strings.TrimSpace(req.Title)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}
	if req.IsAdminPost && !authz.CanCreateAdminPost(actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if !req.IsAdminPost {
		// Titles only exist on announcements.
		req.Title = ""
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Posts.Create(ctx, actor.ID, req.Title, req.Content, req.IsAdminPost, joinFileIDs(req.FileIDs))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create post failed"})
	}

	post := model.Post{
		ID:          id,
		AuthorID:    actor.ID,
		Title:       req.Title,
		Content:     req.Content,
		IsAdminPost: req.IsAdminPost,
		FileIDs:     joinFileIDs(req.FileIDs),
		CreatedAt:   time.Now().UTC(),
	}

	// Side channels after the committed write: webhook relay and broker
	// event, both best-effort and invisible to this response.
	kind := "post"
	if post.IsAdminPost {
		kind = "announcement"
		go h.Notifier.Announcement(post, actor.Name, actor.Role)
	} else {
		go h.Notifier.FeedPost(post, actor.Name, actor.Role)
	}
	go func() {
		_ = event_publisher.PublishContentEvent(context.Background(), queue.ContentEvent{
			Kind:       kind,
			ID:         post.ID,
			AuthorID:   actor.ID,
			AuthorName: actor.Name,
			Summary:    summarize(post.Content),
			CreatedAt:  post.CreatedAt.Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Delete handles DELETE /v1/posts/:id.  The author or the owner may
// delete; comments and likes cascade with the row.
func (h *PostHandler) Delete(c echo.Context) error {
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

	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !authz.CanDeletePost(actor, &post) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Posts.Delete(ctx, id); err != nil && err != sql.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleLike handles POST /v1/posts/:id/like and returns the resulting
// state for the caller.
func (h *PostHandler) ToggleLike(c echo.Context) error {
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

	if _, err := h.Posts.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	liked, count, err := h.Posts.ToggleLike(ctx, id, actor.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle like failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked, "likes_count": count})
}

// summarize trims content to a short single-line excerpt for broker
// events.  Truncation counts runes so a multi-byte character is never cut
// in half.
func summarize(content string) string {
	content = strings.ReplaceAll(content, "\n", " ")
	runes := []rune(content)
	if len(runes) > 140 {
		return string(runes[:140])
	}
	return content
}
