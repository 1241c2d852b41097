package middleware

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/brotherhood/platform/internal/config"
)

// RateLimit returns a Redis-backed fixed-window limiter keyed on
// (client IP, route).  When the limiter is disabled, Redis is nil or a
// Redis call fails, requests pass through — the limiter protects the
// service, it must never take it down.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg.Prefix, c)
            ctx := c.Request().Context()

            count, err := rdb.Incr(ctx, key).Result()
            if err != nil {
                return next(c)
            }
            if count == 1 {
                // First hit of the window sets its expiry.  If that fails
                // the key would never reset and the pair would stay limited
                // forever, so drop the key and let the request through.
                if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
                    _ = rdb.Del(ctx, key).Err()
                    return next(c)
                }
            }

            remaining := int64(cfg.Limit) - count
            if remaining < 0 {
                remaining = 0
            }
            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if count > int64(cfg.Limit) {
                retry := retryAfter(ctx, rdb, key, cfg.Window)
                c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "retry_after": retry,
                })
            }
            return next(c)
        }
    }
}

func rateKey(prefix string, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()
    return strings.Join([]string{prefix, "ip", ip, "route", route}, ":")
}

func retryAfter(ctx context.Context, rdb *redis.Client, key string, window time.Duration) int {
    ttl, err := rdb.TTL(ctx, key).Result()
    if err != nil || ttl <= 0 {
        ttl = window
    }
    secs := int(ttl / time.Second)
    if secs < 1 {
        secs = 1
    }
    return secs
}

// contextWithTimeout derives a bounded context from the request context.
func contextWithTimeout(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), d)
}
