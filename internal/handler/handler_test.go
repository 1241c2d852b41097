package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/brotherhood/platform/internal/authz"
	"github.com/brotherhood/platform/internal/config"
	"github.com/brotherhood/platform/internal/model"
)

func configForTests() config.Config {
	return config.Config{BcryptCost: 4}
}

// newRequest builds an Echo context carrying the given acting user, the
// way the identity middleware would have left it.
func newRequest(method, target, body string, actor *model.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set("actor", actor)
	}
	return c, rec
}

func TestPostCreateValidation(t *testing.T) {
	h := NewPostHandler(nil, nil)

	t.Run("no actor", func(t *testing.T) {
		c, rec := newRequest(http.MethodPost, "/v1/posts", `{"content":"x"}`, nil)
		assert.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("blank content", func(t *testing.T) {
		c, rec := newRequest(http.MethodPost, "/v1/posts", `{"content":"   "}`, &model.User{ID: "u1"})
		assert.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("announcement without capability", func(t *testing.T) {
		c, rec := newRequest(http.MethodPost, "/v1/posts",
			`{"content":"big news","is_admin_post":true}`, &model.User{ID: "u1"})
		assert.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		c, rec := newRequest(http.MethodPost, "/v1/posts", `{not json`, &model.User{ID: "u1"})
		assert.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPostDeleteRejectsBadID(t *testing.T) {
	h := NewPostHandler(nil, nil)
	c, rec := newRequest(http.MethodDelete, "/", "", &model.User{ID: "u1"})
	c.SetParamNames("id")
	c.SetParamValues("not-a-number")
	assert.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminSetPasswordValidation(t *testing.T) {
	h := NewAdminHandler(configForTests(), nil, nil)

	t.Run("non-owner forbidden", func(t *testing.T) {
		c, rec := newRequest(http.MethodPut, "/v1/admin/password",
			`{"password":"long enough secret"}`, &model.User{ID: "u1", HasAdminAccess: true})
		assert.NoError(t, h.SetPassword(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("too short", func(t *testing.T) {
		c, rec := newRequest(http.MethodPut, "/v1/admin/password",
			`{"password":"short"}`, &model.User{ID: "u1", IsOwner: true})
		assert.NoError(t, h.SetPassword(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminSetRoleValidation(t *testing.T) {
	h := NewAdminHandler(configForTests(), nil, nil)

	t.Run("plain user forbidden", func(t *testing.T) {
		c, rec := newRequest(http.MethodPut, "/", `{"role":"General"}`, &model.User{ID: "u1"})
		assert.NoError(t, h.SetRole(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rank holder without admin access forbidden", func(t *testing.T) {
		c, rec := newRequest(http.MethodPut, "/", `{"role":"Soldier"}`,
			&model.User{ID: "u1", Role: authz.RoleSupremeLeader})
		assert.NoError(t, h.SetRole(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		c, rec := newRequest(http.MethodPut, "/", `{"role":"Archduke"}`,
			&model.User{ID: "u1", HasAdminAccess: true})
		assert.NoError(t, h.SetRole(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWebhookEndpointsRequireCapability(t *testing.T) {
	h := NewAdminHandler(configForTests(), nil, nil)

	// Admin access is not enough; webhook config is owner/Supreme Leader.
	actor := &model.User{ID: "u1", HasAdminAccess: true}

	c, rec := newRequest(http.MethodGet, "/v1/admin/webhooks", "", actor)
	assert.NoError(t, h.GetWebhooks(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newRequest(http.MethodPut, "/v1/admin/webhooks", `{"feed":"https://x"}`, actor)
	assert.NoError(t, h.SetWebhooks(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFileUploadValidation(t *testing.T) {
	h := NewFileHandler(nil)
	actor := &model.User{ID: "u1"}

	t.Run("missing filename", func(t *testing.T) {
		c, rec := newRequest(http.MethodPost, "/v1/files", `{"data":"aGk="}`, actor)
		assert.NoError(t, h.Upload(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("declared size over the cap", func(t *testing.T) {
		c, rec := newRequest(http.MethodPost, "/v1/files",
			`{"filename":"big.bin","size":999999999,"data":"aGk="}`, actor)
		assert.NoError(t, h.Upload(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid base64", func(t *testing.T) {
		c, rec := newRequest(http.MethodPost, "/v1/files",
			`{"filename":"a.txt","data":"%%%not-base64%%%"}`, actor)
		assert.NoError(t, h.Upload(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "one line", summarize("one line"))
	assert.Equal(t, "two lines", summarize("two\nlines"))
	long := strings.Repeat("a", 200)
	assert.Len(t, summarize(long), 140)

	// Truncation must not split a multi-byte character.
	wide := strings.Repeat("ü", 200)
	got := summarize(wide)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 140, utf8.RuneCountInString(got))
}

func TestFileIDHelpers(t *testing.T) {
	assert.Equal(t, "a,b", joinFileIDs([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, splitFileIDs("a,b"))
	assert.Empty(t, joinFileIDs(nil))
	assert.Empty(t, splitFileIDs(""))

	// Blank entries are dropped before storage.
	assert.Equal(t, "a,b", joinFileIDs([]string{" a ", "", "b"}))
}
