package handler

import (
	"database/sql"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brotherhood/platform/internal/authz"
	"github.com/brotherhood/platform/internal/middleware"
	"github.com/brotherhood/platform/internal/model"
	"github.com/brotherhood/platform/internal/repository"
)

// fileTTL is how long an upload lives before the purge job removes it.
const fileTTL = 24 * time.Hour

// FileHandler bundles dependencies for the upload endpoints.  Payloads
// arrive base64-encoded in JSON, capped at model.MaxFileSize before any
// row is written.
type FileHandler struct {
	Files *repository.FileRepo
}

func NewFileHandler(f *repository.FileRepo) *FileHandler {
	return &FileHandler{Files: f}
}

type uploadReq struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Data     string `json:"data"` // base64
}

// Upload handles POST /v1/files and returns the generated file id.
func (h *FileHandler) Upload(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req uploadReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Filename = strings.TrimSpace(req.Filename)
	if req.Filename == "" || req.Data == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "filename and data required"})
	}
	// The declared size is checked first so an oversized upload is refused
	// before decoding the payload.
	if req.Size > model.MaxFileSize {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file too large"})
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid base64 data"})
	}
	if int64(len(data)) > model.MaxFileSize {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file too large"})
	}
	if req.MimeType == "" {
		req.MimeType = "application/octet-stream"
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Files.Create(ctx, actor.ID, req.Filename, req.MimeType, data, time.Now().Add(fileTTL))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Download handles GET /v1/files/:id, serving the stored bytes with the
// declared content type.
func (h *FileHandler) Download(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.Files.Get(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	c.Response().Header().Set("Content-Disposition", `inline; filename="`+f.Filename+`"`)
	return c.Blob(http.StatusOK, f.MimeType, f.Data)
}

// Delete handles DELETE /v1/files/:id.  The uploader or an admin-access
// holder may delete.
func (h *FileHandler) Delete(c echo.Context) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")

	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.Files.GetMeta(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !authz.CanDeleteFile(actor, &f) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Files.Delete(ctx, id); err != nil && err != sql.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
