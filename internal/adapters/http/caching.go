package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/api/health" || path == "/api/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/api/detect-trees/status":
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/uploads/"):
			ttl = "public, max-age=86400, immutable" // names are unique per upload

		case strings.HasPrefix(path, "/api/greenzones"),
			strings.HasPrefix(path, "/api/community"),
			strings.HasPrefix(path, "/api/verification"):
			ttl = "public, max-age=30"

		case strings.HasPrefix(path, "/api/"):
			ttl = "private, max-age=0"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
