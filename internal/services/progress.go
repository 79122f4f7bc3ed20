package services

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/smartgoals-api/internal/models"
)

// percent returns completed/total as a whole percentage, rounding halves to even.
func percent(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(completed) / float64(total) * 100))
}

func countTasks(tx *gorm.DB, column string, id uuid.UUID) (completed, total int64, err error) {
	if err = tx.Model(&models.Task{}).Where(column+" = ?", id).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = tx.Model(&models.Task{}).Where(column+" = ? AND completed = ?", id, true).Count(&completed).Error; err != nil {
		return 0, 0, err
	}
	return completed, total, nil
}

// RecalculateProgress refreshes the weekly goal and goal percentages from
// their tasks. Goal status is left alone; weekly status follows progress.
func RecalculateProgress(tx *gorm.DB, weeklyGoalID, goalID uuid.UUID) (goalProgress int, err error) {
	completed, total, err := countTasks(tx, "weekly_goal_id", weeklyGoalID)
	if err != nil {
		return 0, fmt.Errorf("count weekly tasks: %w", err)
	}
	weekly := percent(completed, total)
	if err := tx.Model(&models.WeeklyGoal{}).Where("id = ?", weeklyGoalID).Updates(map[string]interface{}{
		"progress": weekly,
		"status":   models.WeeklyStatusFor(weekly),
	}).Error; err != nil {
		return 0, fmt.Errorf("update weekly goal progress: %w", err)
	}

	completed, total, err = countTasks(tx, "goal_id", goalID)
	if err != nil {
		return 0, fmt.Errorf("count goal tasks: %w", err)
	}
	goalProgress = percent(completed, total)
	if err := tx.Model(&models.Goal{}).Where("id = ?", goalID).Update("progress", goalProgress).Error; err != nil {
		return 0, fmt.Errorf("update goal progress: %w", err)
	}
	return goalProgress, nil
}
