package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brotherhood/platform/internal/authz"
	"github.com/brotherhood/platform/internal/middleware"
	"github.com/brotherhood/platform/internal/model"
	"github.com/brotherhood/platform/internal/repository"
)

// UserHandler serves the authenticated user's own record and the user
// listing used by role management and DM partner selection.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: u}
}

// userResp is the JSON shape for a user across all endpoints.  RoleColor
// comes from the single role lookup table so no client duplicates the
// mapping.
type userResp struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	IsOwner        bool      `json:"is_owner"`
	HasAdminAccess bool      `json:"has_admin_access"`
	Role           string    `json:"role,omitempty"`
	RoleColor      string    `json:"role_color,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toUserResp(u model.User) userResp {
	resp := userResp{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		AvatarURL:      u.AvatarURL,
		IsOwner:        u.IsOwner,
		HasAdminAccess: u.HasAdminAccess,
		Role:           u.Role,
		CreatedAt:      u.CreatedAt,
	}
	if info, ok := authz.LookupRole(u.Role); ok {
		resp.RoleColor = info.DisplayColor
	}
	return resp
}

// Me returns the acting user as resolved by the identity middleware.
func (h *UserHandler) Me(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, toUserResp(*actor))
}

// List returns all users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}
