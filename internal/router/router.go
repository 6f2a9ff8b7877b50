package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zenithcode/zenith-api/internal/config"
	"github.com/zenithcode/zenith-api/internal/handler"
	"github.com/zenithcode/zenith-api/internal/middleware"
	"github.com/zenithcode/zenith-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler            *handler.AuthHandler
	ProblemHandler         *handler.ProblemHandler
	SubmissionHandler      *handler.SubmissionHandler
	LevelSubmissionHandler *handler.LevelSubmissionHandler
	TestHandler            *handler.TestHandler
	StatsHandler           *handler.StatsHandler
	JWTMiddleware          fiber.Handler
	SubmitRateLimit        int
	SubmitRateWindow       time.Duration
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth)
	}

	if deps.ProblemHandler != nil {
		problems := api.Group("/problems", jwtMiddleware)
		// Static segments register before /:id so they are not captured by it.
		if deps.StatsHandler != nil {
			deps.StatsHandler.Register(problems)
		}
		if deps.LevelSubmissionHandler != nil {
			deps.LevelSubmissionHandler.RegisterProblemRoutes(problems)
		}
		deps.ProblemHandler.Register(problems)

		adminProblems := api.Group("/admin/problems", jwtMiddleware, middleware.RequireRole("admin"))
		deps.ProblemHandler.RegisterAdmin(adminProblems)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		if deps.SubmitRateLimit > 0 {
			submissions.Use(middleware.RateLimit("submissions", deps.SubmitRateLimit, deps.SubmitRateWindow))
		}
		if deps.LevelSubmissionHandler != nil {
			deps.LevelSubmissionHandler.RegisterSubmissionRoutes(submissions)
		}
		deps.SubmissionHandler.Register(submissions)

		adminSubmissions := api.Group("/admin/submissions", jwtMiddleware, middleware.RequireRole("admin"))
		deps.SubmissionHandler.RegisterAdmin(adminSubmissions)
	}

	if deps.TestHandler != nil {
		tests := api.Group("/tests", jwtMiddleware)
		deps.TestHandler.Register(tests)

		adminTests := api.Group("/admin/tests", jwtMiddleware, middleware.RequireRole("admin"))
		deps.TestHandler.RegisterAdmin(adminTests)
	}
}
