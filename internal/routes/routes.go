package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/arnold/smartgoals-api/internal/config"
	"github.com/arnold/smartgoals-api/internal/handlers"
	"github.com/arnold/smartgoals-api/internal/metrics"
	"github.com/arnold/smartgoals-api/internal/middleware"
)

// NewApp builds the fiber app with middleware and every route installed.
func NewApp(cfg *config.Config) *fiber.App {
	handlers.Configure(cfg)

	app := fiber.New(fiber.Config{
		AppName:      "smartgoals-api",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.TrimSpace(cfg.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"services": cfg.Services(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	Setup(app)
	return app
}

func Setup(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)
	auth.Post("/google", handlers.GoogleLogin)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/me", middleware.Protected(), handlers.GetMe)

	protected := api.Group("/", middleware.Protected())

	user := protected.Group("/user")
	user.Get("/profile", handlers.GetProfile)
	user.Patch("/profile", handlers.UpdateProfile)
	user.Get("/settings", handlers.GetSettings)
	user.Patch("/settings", handlers.UpdateSettings)

	goals := protected.Group("/goals")
	goals.Post("/", handlers.CreateGoal)
	goals.Get("/", handlers.GetGoals)
	goals.Get("/detailed", handlers.GetGoalsDetailed)

	// AI breakdown
	goals.Post("/breakdown", handlers.GenerateBreakdown)
	goals.Post("/breakdown/regenerate", handlers.RegenerateBreakdown)
	goals.Post("/breakdown/stream", handlers.StreamBreakdown)
	goals.Post("/complete", handlers.SaveCompleteGoal)

	goals.Get("/:id", handlers.GetGoal)
	goals.Patch("/:id", handlers.UpdateGoal)
	goals.Delete("/:id", handlers.DeleteGoal)

	tasks := protected.Group("/tasks")
	tasks.Get("/:id", handlers.GetTask)
	tasks.Patch("/:id", handlers.UpdateTask)

	protected.Get("/activities", handlers.GetActivities)

	analytics := protected.Group("/analytics")
	analytics.Get("/stats", handlers.GetStats)
	analytics.Get("/overview", handlers.GetOverview)
	analytics.Get("/categories", handlers.GetCategoryPerformance)
	analytics.Get("/productivity", handlers.GetProductivity)
	analytics.Get("/achievements", handlers.GetAchievements)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", handlers.GetNotifications)
	notifications.Put("/:id/read", handlers.MarkNotificationRead)
	notifications.Post("/read-all", handlers.MarkAllRead)
	notifications.Post("/device-token", handlers.RegisterDeviceToken)
	notifications.Post("/unsubscribe", handlers.UnregisterDeviceToken)
	notifications.Post("/push/test", handlers.SendTestPush)
	notifications.Post("/email/test", handlers.SendTestEmail)
	notifications.Post("/jobs/daily-now", handlers.RunDailyRemindersNow)
	notifications.Post("/jobs/weekly-now", handlers.RunWeeklyDigestNow)

	// Live updates for the signed-in user
	app.Use("/ws", handlers.WebSocketUpgrade())
	app.Get("/ws/live", websocket.New(handlers.HandleLiveSocket))
}
