package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/greenmap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// withTimeout bounds a handler's user context.
func withTimeout(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, requestTimeout)
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(recover.New())

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	origins := deps.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/api/health", HealthHandler(deps))
	app.Get("/api/ready", ReadyHandler(deps))

	requireAuth := RequireAuth(deps)
	api := app.Group("/api")

	api.Post("/auth/register", withTimeout(RegisterHandler(deps)))
	api.Post("/auth/login", withTimeout(LoginHandler(deps)))
	api.Get("/auth/me", requireAuth, withTimeout(MeHandler(deps)))

	api.Post("/community", requireAuth, withTimeout(CreateCommunityHandler(deps)))
	api.Get("/community", withTimeout(ListCommunitiesHandler(deps)))
	api.Get("/community/:id", withTimeout(GetCommunityHandler(deps)))
	api.Post("/community/:id/join", requireAuth, withTimeout(JoinCommunityHandler(deps)))

	api.Post("/greenzones", requireAuth, withTimeout(CreateZoneHandler(deps)))
	api.Get("/greenzones", withTimeout(ListZonesHandler(deps)))
	api.Get("/greenzones/:id", withTimeout(GetZoneHandler(deps)))

	api.Post("/verify-planting", requireAuth, withTimeout(VerifyPlantingHandler(deps)))
	api.Get("/verification", withTimeout(ListVerificationsHandler(deps)))

	api.Post("/detect-trees", withTimeout(DetectTreesHandler(deps)))
	api.Get("/detect-trees/status", DetectionStatusHandler(deps))

	api.Get("/dashboard", withTimeout(DashboardHandler(deps)))
	api.Get("/dashboard/stats", withTimeout(DashboardStatsHandler(deps)))

	app.Post("/graphql", withTimeout(GraphQLHandler(deps)))

	if deps.UploadDir != "" {
		app.Static("/uploads", deps.UploadDir, fiber.Static{ByteRange: true})
	}

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))

	app.Use(func(c *fiber.Ctx) error {
		return errNotFound(c, "route not found")
	})
}
