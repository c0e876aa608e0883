package middleware

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// overridden in tests
var nowUTC = func() time.Time { return time.Now().UTC() }

func buildKey(method, path, clientIP string, windowStart time.Time) string {
	return "ratelimit:" + strings.ToLower(method) + ":" + path + ":" + clientIP + ":" + strconv.FormatInt(windowStart.Unix(), 10)
}

// windowBounds returns the fixed window now falls into.
func windowBounds(now time.Time, window time.Duration) (start, reset time.Time) {
	start = now.Truncate(window)
	return start, start.Add(window)
}

// retryAfterSeconds rounds the wait up to whole seconds, never below one.
func retryAfterSeconds(now, reset time.Time) int {
	secs := int(math.Ceil(reset.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// ---- Redis helpers ----

// incrWindow bumps the window counter and arms its expiry in one round trip.
func incrWindow(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
