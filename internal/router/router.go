package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TinsuJembere/shelearns-api/internal/config"
	"github.com/TinsuJembere/shelearns-api/internal/handler"
	"github.com/TinsuJembere/shelearns-api/internal/middleware"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler          *handler.AuthHandler
	ProfileHandler       *handler.ProfileHandler
	ChatHandler          *handler.ChatHandler
	BlogHandler          *handler.BlogHandler
	MentorRequestHandler *handler.MentorRequestHandler
	AIHandler            *handler.AIHandler
	SubscribeHandler     *handler.SubscribeHandler
	RealtimeHandler      *handler.RealtimeHandler
	JWTMiddleware        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.ProfileHandler != nil {
		profile := api.Group("/profile", jwtMiddleware)
		deps.ProfileHandler.Register(profile)

		mentors := api.Group("/mentors")
		deps.ProfileHandler.RegisterMentorRoutes(mentors)

		users := api.Group("/users", jwtMiddleware)
		deps.ProfileHandler.RegisterUserRoutes(users)
	}

	if deps.ChatHandler != nil {
		conversations := api.Group("/conversations", jwtMiddleware)
		deps.ChatHandler.Register(conversations)
	}

	if deps.BlogHandler != nil {
		blogPublic := api.Group("/blogs")
		blogAuthed := api.Group("/blogs", jwtMiddleware)
		deps.BlogHandler.Register(blogPublic, blogAuthed)
	}

	if deps.MentorRequestHandler != nil {
		requests := api.Group("/mentor-requests", jwtMiddleware)
		deps.MentorRequestHandler.Register(requests, middleware.RequireRole(models.RoleMentor))
	}

	if deps.AIHandler != nil {
		assistant := api.Group("/ai", jwtMiddleware)
		deps.AIHandler.Register(assistant)
	}

	if deps.SubscribeHandler != nil {
		subscribe := api.Group("/subscribe", middleware.RateLimit("subscribe", 10, time.Minute))
		deps.SubscribeHandler.Register(subscribe)
	}

	if deps.RealtimeHandler != nil {
		// No auth gate: events carry no payload, and browser websocket
		// clients cannot set an Authorization header on the upgrade.
		realtime := api.Group("/realtime")
		deps.RealtimeHandler.Register(realtime)
	}
}
