package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/arnold/smartgoals-api/internal/models"
)

// UserData is everything the analytics endpoints aggregate over.
type UserData struct {
	Goals []models.Goal
	Tasks []models.Task
}

// LoadUserData fetches a user's goals and tasks concurrently.
func LoadUserData(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*UserData, error) {
	var d UserData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := db.WithContext(ctx).Where("user_id = ?", userID).Find(&d.Goals).Error; err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		owned := db.Model(&models.Goal{}).Select("id").Where("user_id = ?", userID)
		if err := db.WithContext(ctx).Where("goal_id IN (?)", owned).Find(&d.Tasks).Error; err != nil {
			return fmt.Errorf("load tasks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *UserData) completedTasks() int {
	n := 0
	for _, t := range d.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

func (d *UserData) goalsWithStatus(status string) int {
	n := 0
	for _, g := range d.Goals {
		if g.Status == status {
			n++
		}
	}
	return n
}

type Stats struct {
	ActiveGoalsCount    int `json:"activeGoalsCount"`
	CompletedTasksCount int `json:"completedTasksCount"`
	SuccessRate         int `json:"successRate"`
}

func ComputeStats(d *UserData) Stats {
	completed := d.completedTasks()
	return Stats{
		ActiveGoalsCount:    d.goalsWithStatus(models.GoalStatusActive),
		CompletedTasksCount: completed,
		SuccessRate:         percent(int64(completed), int64(len(d.Tasks))),
	}
}

type Overview struct {
	TotalGoals        int `json:"totalGoals"`
	ActiveGoals       int `json:"activeGoals"`
	CompletedGoals    int `json:"completedGoals"`
	PausedGoals       int `json:"pausedGoals"`
	DraftGoals        int `json:"draftGoals"`
	TotalTasks        int `json:"totalTasks"`
	CompletedTasks    int `json:"completedTasks"`
	SuccessRate       int `json:"successRate"`
	AvgCompletionTime int `json:"avgCompletionTime"`
	CurrentStreak     int `json:"currentStreak"`
	LongestStreak     int `json:"longestStreak"`
}

func ComputeOverview(d *UserData, now time.Time) Overview {
	completed := d.completedTasks()
	o := Overview{
		TotalGoals:     len(d.Goals),
		ActiveGoals:    d.goalsWithStatus(models.GoalStatusActive),
		CompletedGoals: d.goalsWithStatus(models.GoalStatusCompleted),
		PausedGoals:    d.goalsWithStatus(models.GoalStatusPaused),
		DraftGoals:     d.goalsWithStatus(models.GoalStatusDraft),
		TotalTasks:     len(d.Tasks),
		CompletedTasks: completed,
		SuccessRate:    percent(int64(completed), int64(len(d.Tasks))),
	}

	totalDays, n := 0, 0
	for _, g := range d.Goals {
		if g.Status != models.GoalStatusCompleted {
			continue
		}
		days := int(completionTime(g) / (24 * time.Hour))
		if days < 1 {
			days = 1
		}
		totalDays += days
		n++
	}
	if n > 0 {
		o.AvgCompletionTime = totalDays / n
	}
	o.CurrentStreak, o.LongestStreak = ComputeStreaks(d, now)
	return o
}

// completionTime measures from creation to completion, using the last
// update for goals completed before completedAt was tracked.
func completionTime(g models.Goal) time.Duration {
	end := g.UpdatedAt
	if g.CompletedAt != nil {
		end = *g.CompletedAt
	}
	return end.Sub(g.CreatedAt)
}

type CategoryPerformance struct {
	Name              string  `json:"name"`
	Count             int     `json:"count"`
	SuccessRate       float64 `json:"successRate"`
	AvgTimeToComplete float64 `json:"avgTimeToComplete"`
}

func ComputeCategories(d *UserData) []CategoryPerformance {
	type acc struct {
		count, tasks, done, completedGoals int
		days                               float64
	}
	byGoal := make(map[uuid.UUID]string, len(d.Goals))
	cats := map[string]*acc{}
	for _, g := range d.Goals {
		byGoal[g.ID] = g.Category
		a := cats[g.Category]
		if a == nil {
			a = &acc{}
			cats[g.Category] = a
		}
		a.count++
		if g.Status == models.GoalStatusCompleted {
			a.completedGoals++
			a.days += completionTime(g).Hours() / 24
		}
	}
	for _, t := range d.Tasks {
		a := cats[byGoal[t.GoalID]]
		if a == nil {
			continue
		}
		a.tasks++
		if t.Completed {
			a.done++
		}
	}

	out := make([]CategoryPerformance, 0, len(cats))
	for name, a := range cats {
		cp := CategoryPerformance{Name: name, Count: a.count}
		if a.tasks > 0 {
			cp.SuccessRate = round1(float64(a.done) / float64(a.tasks) * 100)
		}
		if a.completedGoals > 0 {
			cp.AvgTimeToComplete = round1(a.days / float64(a.completedGoals))
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessRate != out[j].SuccessRate {
			return out[i].SuccessRate > out[j].SuccessRate
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type DayProductivity struct {
	DayOfWeek      string  `json:"dayOfWeek"`
	TasksCompleted int     `json:"tasksCompleted"`
	CompletionRate float64 `json:"completionRate"`
}

// ComputeProductivity groups tasks by the weekday they are scheduled on,
// Sunday first. Days without tasks are omitted.
func ComputeProductivity(d *UserData) []DayProductivity {
	var total, done [7]int
	for _, t := range d.Tasks {
		day := taskDay(t).Weekday()
		total[day]++
		if t.Completed {
			done[day]++
		}
	}
	var out []DayProductivity
	for i := time.Sunday; i <= time.Saturday; i++ {
		if total[i] == 0 {
			continue
		}
		out = append(out, DayProductivity{
			DayOfWeek:      i.String(),
			TasksCompleted: done[i],
			CompletionRate: round1(float64(done[i]) / float64(total[i]) * 100),
		})
	}
	return out
}

func taskDay(t models.Task) time.Time {
	if t.Date != "" {
		if d, err := time.Parse("2006-01-02", t.Date); err == nil {
			return d
		}
	}
	return t.CreatedAt.UTC()
}

// ComputeStreaks counts runs of consecutive days with at least one
// completed task. The current streak only counts if its last day is today
// or yesterday.
func ComputeStreaks(d *UserData, now time.Time) (current, longest int) {
	seen := map[string]bool{}
	var days []time.Time
	for _, t := range d.Tasks {
		if !t.Completed {
			continue
		}
		day := completedDay(t)
		key := day.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return 0, 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := truncateDay(now.UTC())
	if daysBetween(days[len(days)-1], today) <= 1 {
		current = run
	}
	return current, longest
}

// completedDay is the scheduled date of a completed task, falling back to
// when it was completed.
func completedDay(t models.Task) time.Time {
	if t.Date != "" {
		if d, err := time.Parse("2006-01-02", t.Date); err == nil {
			return d
		}
	}
	if t.CompletedAt != nil {
		return truncateDay(t.CompletedAt.UTC())
	}
	return truncateDay(t.UpdatedAt.UTC())
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
