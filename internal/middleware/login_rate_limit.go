package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
)

var errTooManyLogins = apperr.New(apperr.KindRateLimited, "Too many login attempts, try again later")

// LoginRateLimit caps login attempts per identifier (or client IP) per minute.
// It is a no-op without Redis and fails open on cache errors.
func LoginRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		who := strings.ToLower(strings.TrimSpace(c.FormValue("identifier")))
		if who == "" {
			who = c.IP()
		}
		key := "rl:login:" + c.Path() + ":" + who

		ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
		defer cancel()
		cnt, err := cache.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("login rate limit unavailable", slog.Any("error", err))
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(ctx, key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return errTooManyLogins
		}
		return c.Next()
	}
}
