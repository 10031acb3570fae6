package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit caps requests per key inside a fixed window. The key function
// usually returns the authenticated user id, falling back to the client IP.
// Fails open when Redis is unavailable.
func RateLimit(cache *redis.Client, name string, max int, window time.Duration, keyFn func(*fiber.Ctx) string) fiber.Handler {
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		id := keyFn(c)
		if id == "" {
			id = c.IP()
		}
		key := "rl:" + name + ":" + id
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, window)
		}
		if cnt > int64(max) {
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
		}
		return c.Next()
	}
}

// UserOrIP keys a rate limit by the authenticated user.
func UserOrIP(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}
