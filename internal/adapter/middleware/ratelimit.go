package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"

	storeTimeout = 2 * time.Second
)

// RateLimitMiddleware caps mutating requests per client IP and route within a
// fixed window. Reads pass through. A limit <= 0 disables the check. When
// redis is unreachable requests are let through and a warning is logged.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			if limit <= 0 || window <= 0 {
				return next(c)
			}

			now := nowUTC()
			start, reset := windowBounds(now, window)
			key := buildKey(req.Method, c.Path(), c.RealIP(), start)

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			count, err := incrWindow(ctx, rdb, key, window)
			if err != nil {
				log.WarnContext(req.Context(), "rate limit store unavailable",
					"key", key,
					"error", err,
				)
				return next(c)
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set(HeaderRateLimitLimit, strconv.Itoa(limit))
			h.Set(HeaderRateLimitRemaining, strconv.FormatInt(remaining, 10))

			if count > int64(limit) {
				h.Set(HeaderRetryAfter, strconv.Itoa(retryAfterSeconds(now, reset)))
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
