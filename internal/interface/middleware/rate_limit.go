package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/pkg/response"
)

func requestIP(c *gin.Context) string {
	if ip := c.GetString(realIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request.
type KeyFunc func(c *gin.Context) string

// KeyByIPAndPath limits each client per route.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + routeOf(c) + ":ip:" + requestIP(c)
	}
}

// KeyByUserID limits authenticated callers per account and anonymous ones per IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		p, ok := CurrentPrincipal(c)
		if !ok || p.UserID == "" {
			return "rl:user:anon:ip:" + requestIP(c)
		}
		return "rl:user:" + p.UserID
	}
}

// INCR, PEXPIRE on the first hit, then report the hit count and remaining ttl.
var hitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// FixedWindow counts hits per key in Redis.
type FixedWindow struct {
	Redis  redis.Scripter
	Max    int
	Window time.Duration
}

// Hit records one request for key and returns the count so far in the
// window and the time until the window resets.
func (w FixedWindow) Hit(ctx context.Context, key string) (int, time.Duration, error) {
	res, err := hitScript.Run(ctx, w.Redis, []string{key}, w.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	reset := w.Window
	if res[1] > 0 {
		reset = time.Duration(res[1]) * time.Millisecond
	}
	return int(res[0]), reset, nil
}

// AllowFunc returns true to bypass the limit.
type AllowFunc func(*gin.Context) bool

// RateLimit rejects requests past limit per window with 429. It fails open when
// Redis errors and skips OPTIONS requests. A nil client or non-positive limit
// disables it.
func RateLimit(rdb *redis.Client, logger *logrus.Logger, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	fw := FixedWindow{Redis: rdb, Max: limit, Window: window}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		key := keyFn(c)
		count, reset, err := fw.Hit(c.Request.Context(), key)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("key", key).Warn("rate limit unavailable")
			}
			c.Next()
			return
		}

		resetSec := int((reset + time.Second - 1) / time.Second)
		c.Header("X-RateLimit-Limit", strconv.Itoa(fw.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, fw.Max-count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > fw.Max {
			c.Header("Retry-After", strconv.Itoa(resetSec))
			response.Abort(c, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}
