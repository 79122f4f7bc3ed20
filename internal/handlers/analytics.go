package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/services"
)

// analyticsNow is replaced in tests.
var analyticsNow = time.Now

// withUserData loads the current user's goals and tasks and passes them to fn.
func withUserData(c *fiber.Ctx, fn func(d *services.UserData) interface{}) error {
	data, err := services.LoadUserData(c.UserContext(), database.DB, middleware.GetUserID(c))
	if err != nil {
		return internalError(c, "Failed to load analytics", err)
	}
	return c.JSON(fn(data))
}

func GetStats(c *fiber.Ctx) error {
	return withUserData(c, func(d *services.UserData) interface{} {
		return services.ComputeStats(d)
	})
}

func GetOverview(c *fiber.Ctx) error {
	return withUserData(c, func(d *services.UserData) interface{} {
		return services.ComputeOverview(d, analyticsNow())
	})
}

func GetCategoryPerformance(c *fiber.Ctx) error {
	return withUserData(c, func(d *services.UserData) interface{} {
		return services.ComputeCategories(d)
	})
}

func GetProductivity(c *fiber.Ctx) error {
	return withUserData(c, func(d *services.UserData) interface{} {
		return services.ComputeProductivity(d)
	})
}

func GetAchievements(c *fiber.Ctx) error {
	return withUserData(c, func(d *services.UserData) interface{} {
		return services.ComputeAchievements(d, analyticsNow())
	})
}
