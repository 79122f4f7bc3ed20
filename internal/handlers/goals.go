package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/i18n"
	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/metrics"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/models"
	"github.com/arnold/smartgoals-api/internal/services"
)

// withPlan preloads weekly goals by week and their tasks by day.
func withPlan(db *gorm.DB) *gorm.DB {
	return db.
		Preload("WeeklyGoals", func(db *gorm.DB) *gorm.DB {
			return db.Order("week_number ASC")
		}).
		Preload("WeeklyGoals.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("day ASC, created_at ASC")
		})
}

// findGoal loads a goal owned by the current user. Goals of other users
// are reported as not found.
func findGoal(c *fiber.Ctx, db *gorm.DB) (*models.Goal, error) {
	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid goal ID")
	}
	var goal models.Goal
	if err := db.Where("id = ? AND user_id = ?", goalID, middleware.GetUserID(c)).First(&goal).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Goal not found")
	}
	return &goal, nil
}

func CreateGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateGoalRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	draft := c.QueryBool("draft")
	smart := req.Smart()
	if !draft {
		if missing := smart.Missing(); len(missing) > 0 {
			return validationFailed(c, missing[0],
				fmt.Sprintf("Missing required SMART(ER) fields: %s", strings.Join(missing, ", ")))
		}
	}

	goal := models.Goal{
		UserID:      userID,
		Title:       req.GoalTitle(),
		Description: req.Description,
		Category:    req.Category,
		SmartFields: smart,
		Status:      models.GoalStatusActive,
	}
	if draft {
		goal.Status = models.GoalStatusDraft
	}

	if err := database.DB.Create(&goal).Error; err != nil {
		return internalError(c, "Failed to create goal", err)
	}

	meta := map[string]interface{}{"goalId": goal.ID, "goalTitle": goal.Title}
	if draft {
		LogActivity(userID, models.ActivityGoalDraftCreated, "Saved draft: "+goal.Title, meta)
	} else {
		LogActivity(userID, models.ActivityGoalCreated, "Created goal: "+goal.Title, meta)
	}

	return c.Status(fiber.StatusCreated).JSON(goal)
}

func GetGoals(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var goals []models.Goal
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error; err != nil {
		return internalError(c, "Failed to load goals", err)
	}
	return c.JSON(goals)
}

func GetGoalsDetailed(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var goals []models.Goal
	if err := withPlan(database.DB).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error; err != nil {
		return internalError(c, "Failed to load goals", err)
	}
	return c.JSON(goals)
}

func GetGoal(c *fiber.Ctx) error {
	goal, err := findGoal(c, withPlan(database.DB))
	if err != nil {
		return err
	}
	return c.JSON(goal)
}

func UpdateGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	goal, err := findGoal(c, database.DB)
	if err != nil {
		return err
	}

	var req models.UpdateGoalRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updates := req.Changes()
	oldStatus := goal.Status
	statusChanged := req.Status != nil && *req.Status != oldStatus
	if statusChanged {
		if *req.Status == models.GoalStatusCompleted {
			updates["completed_at"] = time.Now()
		} else {
			updates["completed_at"] = nil
		}
	}

	if len(updates) > 0 {
		if err := database.DB.Model(goal).Updates(updates).Error; err != nil {
			return internalError(c, "Failed to update goal", err)
		}
	}

	if err := withPlan(database.DB).First(goal, "id = ?", goal.ID).Error; err != nil {
		return internalError(c, "Failed to load goal", err)
	}

	if statusChanged {
		metrics.RecordGoalStatusChange(goal.Status)
		LogActivity(userID, models.ActivityGoalStatusChanged,
			fmt.Sprintf("Changed %s from %s to %s", goal.Title, oldStatus, goal.Status),
			map[string]interface{}{"goalId": goal.ID, "from": oldStatus, "to": goal.Status})

		if goal.Status == models.GoalStatusCompleted {
			locale := requestLocale(c)
			if _, err := services.Notify(c.UserContext(), userID, models.NotificationGoalCompleted,
				i18n.T(locale, i18n.GoalCompletedTitle), i18n.T(locale, i18n.GoalCompletedBody, goal.Title),
				map[string]interface{}{"goalId": goal.ID.String()}); err != nil {
				logger.L().Warn("goal completed notification failed", "goal_id", goal.ID, "error", err)
			}
		}
	}

	WS.Publish(userID, EventGoalUpdated, goal)
	return c.JSON(goal)
}

func DeleteGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	goal, err := findGoal(c, database.DB)
	if err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.WeeklyGoal{}).Error; err != nil {
			return err
		}
		return tx.Delete(goal).Error
	})
	if err != nil {
		return internalError(c, "Failed to delete goal", err)
	}

	LogActivity(userID, models.ActivityGoalDeleted, "Deleted goal: "+goal.Title,
		map[string]interface{}{"goalId": goal.ID})
	WS.Publish(userID, EventGoalDeleted, fiber.Map{"id": goal.ID})

	return c.JSON(fiber.Map{"message": "Goal deleted successfully"})
}
