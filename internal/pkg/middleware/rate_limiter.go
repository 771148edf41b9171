package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/session"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/usercontext"
)

// RateLimiterConfig builds the limiter config from RATE_LIMIT_MAX and
// RATE_LIMIT_WINDOW. A nil storage keeps counters in memory.
func RateLimiterConfig(storage fiber.Storage) limiter.Config {
	return limiter.Config{
		Max:        env.GetEnvInt("RATE_LIMIT_MAX", 120),
		Expiration: env.GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			if uuid := usercontext.GetUserContext(c).UserUUID; uuid != "" {
				return "user:" + uuid
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "too many requests",
			})
		},
	}
}

// RateLimiter limits API requests per user (or IP) with counters in Redis DB 3.
func RateLimiter() fiber.Handler {
	host, port, password := session.RedisAddress()
	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 3,
		Reset:    false,
	})
	return limiter.New(RateLimiterConfig(storage))
}
