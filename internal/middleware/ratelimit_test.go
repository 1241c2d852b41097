package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brotherhood/platform/internal/config"
)

// scriptedRedis answers the limiter's commands in-process through a client
// hook, so no server is needed.  INCR counts up, EXPIRE optionally fails,
// TTL reports a fixed window remainder, DEL is recorded.
type scriptedRedis struct {
	count     int64
	failExpir bool
	deleted   int
}

func (s *scriptedRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (s *scriptedRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (s *scriptedRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		switch cmd.Name() {
		case "incr":
			s.count++
			cmd.(*redis.IntCmd).SetVal(s.count)
		case "expire":
			if s.failExpir {
				return errors.New("expire failed")
			}
			cmd.(*redis.BoolCmd).SetVal(true)
		case "ttl":
			cmd.(*redis.DurationCmd).SetVal(30 * time.Second)
		case "del":
			s.deleted++
			cmd.(*redis.IntCmd).SetVal(1)
		default:
			return next(ctx, cmd)
		}
		return nil
	}
}

func newScriptedClient(s *scriptedRedis) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.AddHook(s)
	return client
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	e := echo.New()

	for _, cfg := range []config.RateLimitConfig{
		{Enabled: false, Limit: 1, Window: time.Minute},
		{Enabled: true, Limit: 1, Window: time.Minute}, // nil Redis below
	} {
		mw := RateLimit(cfg, nil)
		handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

		for i := 0; i < 5; i++ {
			req := httptest.NewRequest(http.MethodPost, "/v1/posts", nil)
			rec := httptest.NewRecorder()
			require.NoError(t, handler(e.NewContext(req, rec)))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	}
}

func TestRateLimitEnforcesWindowLimit(t *testing.T) {
	e := echo.New()
	script := &scriptedRedis{}
	mw := RateLimit(config.RateLimitConfig{
		Enabled: true, Limit: 2, Window: time.Minute, Prefix: "rl",
	}, newScriptedClient(script))
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := make([]int, 0, 3)
	var lastRec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/posts", nil)
		lastRec = httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, lastRec)))
		codes = append(codes, lastRec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "30", lastRec.Header().Get("Retry-After"))
	assert.Equal(t, "2", lastRec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", lastRec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitDropsKeyWhenExpireFails(t *testing.T) {
	e := echo.New()
	script := &scriptedRedis{failExpir: true}
	mw := RateLimit(config.RateLimitConfig{
		Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl",
	}, newScriptedClient(script))
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// Without an expiry the window would never reset; the limiter must
	// delete the key and pass the request through instead.
	req := httptest.NewRequest(http.MethodPost, "/v1/posts", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, script.deleted)
}

func TestRateKeySeparatesClientsAndRoutes(t *testing.T) {
	e := echo.New()

	ctxFor := func(method, path, ip string) echo.Context {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = ip + ":1234"
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return c
	}

	a := rateKey("rl", ctxFor(http.MethodPost, "/v1/posts", "10.0.0.1"))
	b := rateKey("rl", ctxFor(http.MethodPost, "/v1/posts", "10.0.0.2"))
	c := rateKey("rl", ctxFor(http.MethodGet, "/v1/posts", "10.0.0.1"))

	assert.NotEqual(t, a, b, "distinct clients get distinct windows")
	assert.NotEqual(t, a, c, "distinct routes get distinct windows")
	assert.Equal(t, a, rateKey("rl", ctxFor(http.MethodPost, "/v1/posts", "10.0.0.1")))
}
