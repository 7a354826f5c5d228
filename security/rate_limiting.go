package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/hook"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis     *redis.Client
	perMinute int64
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{redis: redisClient, perMinute: int64(perMinute)}
}

// Middleware applies a fixed one-minute window per authenticated user,
// falling back to the client IP for anonymous requests.
func (r *RateLimiter) Middleware() *hook.Handler[*core.RequestEvent] {
	return &hook.Handler[*core.RequestEvent]{
		Id: "helpdeskRateLimit",
		Func: func(e *core.RequestEvent) error {
			identity := e.RealIP()
			if e.Auth != nil {
				identity = fmt.Sprintf("user:%s", e.Auth.Id)
			}

			key := fmt.Sprintf("ratelimit:%s", identity)
			ctx := e.Request.Context()

			count, err := r.redis.Incr(ctx, key).Result()
			if err != nil {
				// Redis trouble should not take the API down.
				return e.Next()
			}
			if count == 1 {
				r.redis.Expire(ctx, key, time.Minute)
			}
			if count > r.perMinute {
				return apis.NewTooManyRequestsError("Rate limit exceeded. Please try again later.", nil)
			}

			return e.Next()
		},
	}
}

// AntiBotMiddleware rejects obvious scraper user agents.
func (r *RateLimiter) AntiBotMiddleware() *hook.Handler[*core.RequestEvent] {
	return &hook.Handler[*core.RequestEvent]{
		Id: "helpdeskAntiBot",
		Func: func(e *core.RequestEvent) error {
			userAgent := e.Request.Header.Get("User-Agent")
			if isSuspiciousUserAgent(userAgent) {
				return apis.NewForbiddenError("Access denied", nil)
			}
			return e.Next()
		},
	}
}

func isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}
