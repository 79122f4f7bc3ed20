package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/metrics"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/models"
	"github.com/arnold/smartgoals-api/internal/services"
)

// findTask loads a task whose goal belongs to the current user.
func findTask(c *fiber.Ctx) (*models.Task, error) {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid task ID")
	}
	var task models.Task
	err = database.DB.
		Joins("JOIN goals ON goals.id = daily_tasks.goal_id AND goals.deleted_at IS NULL").
		Where("daily_tasks.id = ? AND goals.user_id = ?", taskID, middleware.GetUserID(c)).
		First(&task).Error
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Task not found")
	}
	return &task, nil
}

func GetTask(c *fiber.Ctx) error {
	task, err := findTask(c)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// UpdateTask applies a partial update. Changing completion recalculates the
// weekly goal and goal progress in the same transaction.
func UpdateTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	task, err := findTask(c)
	if err != nil {
		return err
	}

	var req models.UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.EstimatedHours != nil {
		updates["estimated_hours"] = *req.EstimatedHours
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}

	wasCompleted := task.Completed
	completionChanged := req.Completed != nil && *req.Completed != wasCompleted
	if completionChanged {
		updates["completed"] = *req.Completed
		if *req.Completed {
			updates["completed_at"] = time.Now()
		} else {
			updates["completed_at"] = nil
		}
	}

	if len(updates) > 0 {
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(task).Updates(updates).Error; err != nil {
				return err
			}
			if completionChanged {
				_, err := services.RecalculateProgress(tx, task.WeeklyGoalID, task.GoalID)
				return err
			}
			return nil
		})
		if err != nil {
			return internalError(c, "Failed to update task", err)
		}
	}

	if err := database.DB.First(task, "id = ?", task.ID).Error; err != nil {
		return internalError(c, "Failed to load task", err)
	}

	if completionChanged {
		metrics.RecordTaskToggle(task.Completed)
		if task.Completed {
			LogActivity(userID, models.ActivityTaskCompleted, "Completed task: "+task.Title,
				map[string]interface{}{"taskId": task.ID, "taskTitle": task.Title, "goalId": task.GoalID})
		}
	}

	WS.Publish(userID, EventTaskUpdated, task)
	return c.JSON(task)
}
