package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brotherhood/platform/internal/authz"
	"github.com/brotherhood/platform/internal/config"
	"github.com/brotherhood/platform/internal/middleware"
	"github.com/brotherhood/platform/internal/model"
	"github.com/brotherhood/platform/internal/repository"
	"github.com/brotherhood/platform/internal/utils"
)

// minAdminPasswordLen is the shortest accepted shared admin password.
const minAdminPasswordLen = 8

// AdminHandler bundles dependencies for the moderation surface: the shared
// admin password, role grants and the webhook configuration.
type AdminHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Settings *repository.SettingRepo
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, s *repository.SettingRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u, Settings: s}
}

// ----- DTOs -----

type passwordReq struct {
	Password string `json:"password"`
}

type roleReq struct {
	Role string `json:"role"`
}

type webhooksResp struct {
	Feed         string `json:"feed"`
	Announcement string `json:"announcement"`
	Chat         string `json:"chat"`
}

// SetPassword handles PUT /v1/admin/password.  Only the owner may set or
// rotate the shared password; it is stored as a bcrypt hash.
func (h *AdminHandler) SetPassword(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !authz.CanSetAdminPassword(actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Password) < minAdminPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too short"})
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Settings.Set(ctx, model.SettingAdminPasswordHash, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Unlock handles POST /v1/admin/unlock.  Any authenticated user may
// consume the shared password; a match grants them admin access.
func (h *AdminHandler) Unlock(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	hash, err := h.Settings.Get(ctx, model.SettingAdminPasswordHash)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if hash == "" || !utils.VerifyPassword(hash, req.Password) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "wrong password"})
	}
	if err := h.Users.SetAdminAccess(ctx, actor.ID, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant failed"})
	}
	actor.HasAdminAccess = true
	return c.JSON(http.StatusOK, toUserResp(*actor))
}

// SetRole handles PUT /v1/users/:id/role.  Grants are flat: any owner or
// admin-access holder may assign any rank to any user.
func (h *AdminHandler) SetRole(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !authz.CanManageRoles(actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Role = strings.TrimSpace(req.Role)
	if !authz.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	targetID := c.Param("id")

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Users.SetRole(ctx, targetID, req.Role); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearRole handles DELETE /v1/users/:id/role.
func (h *AdminHandler) ClearRole(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !authz.CanManageRoles(actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	targetID := c.Param("id")

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Users.SetRole(ctx, targetID, ""); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// GetWebhooks handles GET /v1/admin/webhooks.
func (h *AdminHandler) GetWebhooks(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !authz.CanManageWebhooks(actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var resp webhooksResp
	var err error
	if resp.Feed, err = h.Settings.Get(ctx, model.SettingWebhookFeed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if resp.Announcement, err = h.Settings.Get(ctx, model.SettingWebhookAnnouncement); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if resp.Chat, err = h.Settings.Get(ctx, model.SettingWebhookChat); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// SetWebhooks handles PUT /v1/admin/webhooks.  Empty strings clear a
// webhook; a cleared webhook makes the matching relay a no-op.
func (h *AdminHandler) SetWebhooks(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !authz.CanManageWebhooks(actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req webhooksResp
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	pairs := map[string]string{
		model.SettingWebhookFeed:         strings.TrimSpace(req.Feed),
		model.SettingWebhookAnnouncement: strings.TrimSpace(req.Announcement),
		model.SettingWebhookChat:         strings.TrimSpace(req.Chat),
	}
	for key, value := range pairs {
		if err := h.Settings.Set(ctx, key, value); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
