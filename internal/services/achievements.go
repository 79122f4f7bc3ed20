package services

import (
	"time"

	"github.com/arnold/smartgoals-api/internal/models"
)

type trigger int

const (
	triggerGoalCount trigger = iota
	triggerCompletedGoals
	triggerCompletedTasks
	triggerMonthlyTasks
	triggerStreak
	triggerEarlyTasks
	triggerLateTasks
	triggerFastGoals
	triggerActiveDays
)

type AchievementDefinition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Target      int    `json:"target"`
	trigger     trigger
}

type Achievement struct {
	AchievementDefinition
	Progress int  `json:"progress"`
	Unlocked bool `json:"unlocked"`
}

var AchievementDefinitions = []AchievementDefinition{
	{"first_goal", "Goal Setter", "Created your first SMART goal", "🎯", "goals", 1, triggerGoalCount},
	{"goal_achiever", "Goal Achiever", "Complete your first goal", "🏆", "goals", 1, triggerCompletedGoals},
	{"goal_master", "Goal Master", "Complete 5 goals", "👑", "goals", 5, triggerCompletedGoals},
	{"perfectionist", "Perfectionist", "Complete 10 goals with 100% success rate", "💎", "goals", 10, triggerCompletedGoals},
	{"first_task", "First Task Done", "Completed your first task", "✅", "tasks", 1, triggerCompletedTasks},
	{"task_ninja", "Task Ninja", "Complete 10 tasks", "🥷", "tasks", 10, triggerCompletedTasks},
	{"productive_month", "Productive Month", "Complete 50 tasks in a month", "💫", "tasks", 50, triggerMonthlyTasks},
	{"work_horse", "Work Horse", "Complete 100 tasks", "🐎", "tasks", 100, triggerCompletedTasks},
	{"getting_started", "Getting Started", "Maintain a 3-day streak", "🌱", "streaks", 3, triggerStreak},
	{"week_warrior", "Week Warrior", "Complete all tasks for a full week", "⚡", "streaks", 7, triggerStreak},
	{"consistency_king", "Consistency King", "Maintain a 14-day streak", "🔥", "streaks", 14, triggerStreak},
	{"streak_master", "Streak Master", "Maintain a 30-day streak", "🌟", "streaks", 30, triggerStreak},
	{"legend", "Legend", "Maintain a 50-day streak", "👑", "streaks", 50, triggerStreak},
	{"early_bird", "Early Bird", "Complete 5 tasks before 9 AM", "🐦", "time", 5, triggerEarlyTasks},
	{"night_owl", "Night Owl", "Complete 5 tasks after 10 PM", "🦉", "time", 5, triggerLateTasks},
	{"speed_demon", "Speed Demon", "Complete a goal in under 24 hours", "💨", "special", 1, triggerFastGoals},
	{"marathon_runner", "Marathon Runner", "Work on goals for 100 days", "🏃", "special", 100, triggerActiveDays},
}

// ComputeAchievements evaluates every definition against the user's data.
// Hours are taken in UTC.
func ComputeAchievements(d *UserData, now time.Time) []Achievement {
	values := map[trigger]int{
		triggerGoalCount:      len(d.Goals),
		triggerCompletedGoals: d.goalsWithStatus(models.GoalStatusCompleted),
		triggerCompletedTasks: d.completedTasks(),
	}
	_, values[triggerStreak] = ComputeStreaks(d, now)

	monthAgo := now.AddDate(0, 0, -30)
	activeDays := map[string]bool{}
	for _, t := range d.Tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		at := t.CompletedAt.UTC()
		if at.After(monthAgo) {
			values[triggerMonthlyTasks]++
		}
		if at.Hour() < 9 {
			values[triggerEarlyTasks]++
		}
		if at.Hour() >= 22 {
			values[triggerLateTasks]++
		}
		activeDays[at.Format("2006-01-02")] = true
	}
	values[triggerActiveDays] = len(activeDays)

	for _, g := range d.Goals {
		if g.Status == models.GoalStatusCompleted && g.CompletedAt != nil && completionTime(g) < 24*time.Hour {
			values[triggerFastGoals]++
		}
	}

	out := make([]Achievement, 0, len(AchievementDefinitions))
	for _, def := range AchievementDefinitions {
		v := values[def.trigger]
		progress := v
		if progress > def.Target {
			progress = def.Target
		}
		out = append(out, Achievement{
			AchievementDefinition: def,
			Progress:              progress,
			Unlocked:              v >= def.Target,
		})
	}
	return out
}
