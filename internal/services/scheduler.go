package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/arnold/smartgoals-api/internal/config"
	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/i18n"
	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/models"
)

var nowFunc = time.Now

// Scheduler runs the daily reminder and weekly digest jobs in UTC.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(cfg *config.Config) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(cfg.ReminderCron, func() { runJob("daily_reminders", RunDailyReminders) }); err != nil {
		return nil, fmt.Errorf("failed to schedule daily reminders: %w", err)
	}
	if _, err := c.AddFunc(cfg.DigestCron, func() { runJob("weekly_digest", RunWeeklyDigest) }); err != nil {
		return nil, fmt.Errorf("failed to schedule weekly digest: %w", err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.L().Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		logger.L().Info("scheduler stopped")
	case <-ctx.Done():
		logger.L().Warn("scheduler stop timed out")
	}
}

func runJob(name string, job func(context.Context) (int, error)) {
	start := time.Now()
	n, err := job(context.Background())
	if err != nil {
		logger.L().Error("job failed", "job", name, "error", err)
		return
	}
	logger.L().Info("job finished", "job", name, "users", n, "duration_ms", time.Since(start).Milliseconds())
}

// RunDailyReminders nudges every user with reminders on and at least one
// active goal. It returns how many users were reminded.
func RunDailyReminders(ctx context.Context) (int, error) {
	var settings []models.UserSettings
	if err := database.DB.WithContext(ctx).Where("goal_reminders = ?", true).Find(&settings).Error; err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}

	reminded := 0
	for _, s := range settings {
		var active int64
		if err := database.DB.WithContext(ctx).Model(&models.Goal{}).
			Where("user_id = ? AND status = ?", s.UserID, models.GoalStatusActive).
			Count(&active).Error; err != nil {
			logger.L().Warn("reminder: count goals failed", "user_id", s.UserID, "error", err)
			continue
		}
		if active == 0 {
			continue
		}

		title := i18n.T(s.Language, i18n.ReminderTitle)
		body := i18n.T(s.Language, i18n.ReminderBody, active)
		if _, err := Notify(ctx, s.UserID, models.NotificationGoalReminder, title, body, nil); err != nil {
			logger.L().Warn("reminder: notify failed", "user_id", s.UserID, "error", err)
			continue
		}

		if s.EmailNotifications && Email.Enabled() {
			var user models.User
			if err := database.DB.WithContext(ctx).First(&user, "id = ?", s.UserID).Error; err == nil {
				if err := Email.SendReminder(ctx, &user, s.Language, int(active)); err != nil {
					logger.L().Warn("reminder: email failed", "user_id", s.UserID, "error", err)
				}
			}
		}
		reminded++
	}
	return reminded, nil
}

// RunWeeklyDigest emails each opted-in user the number of tasks they
// completed in the last seven days.
func RunWeeklyDigest(ctx context.Context) (int, error) {
	if !Email.Enabled() {
		logger.L().Info("weekly digest skipped: email not configured")
		return 0, nil
	}

	var settings []models.UserSettings
	if err := database.DB.WithContext(ctx).
		Where("weekly_digest = ? AND email_notifications = ?", true, true).
		Find(&settings).Error; err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}

	since := nowFunc().Add(-7 * 24 * time.Hour)
	sent := 0
	for _, s := range settings {
		var user models.User
		if err := database.DB.WithContext(ctx).First(&user, "id = ?", s.UserID).Error; err != nil {
			continue
		}
		completed, err := CompletedTasksSince(ctx, user.ID, since)
		if err != nil {
			logger.L().Warn("digest: count tasks failed", "user_id", user.ID, "error", err)
			continue
		}
		if err := Email.SendDigest(ctx, &user, s.Language, completed); err != nil {
			if errors.Is(err, ErrEmailNotConfigured) {
				return sent, nil
			}
			logger.L().Warn("digest: email failed", "user_id", user.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

// CompletedTasksSince counts the user's tasks completed after since.
func CompletedTasksSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var n int64
	owned := database.DB.Model(&models.Goal{}).Select("id").Where("user_id = ?", userID)
	err := database.DB.WithContext(ctx).Model(&models.Task{}).
		Where("goal_id IN (?) AND completed = ? AND completed_at >= ?", owned, true, since).
		Count(&n).Error
	return int(n), err
}
