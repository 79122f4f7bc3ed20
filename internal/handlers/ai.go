package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"github.com/arnold/smartgoals-api/internal/breakdown"
	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/models"
	"github.com/arnold/smartgoals-api/internal/services"
)

const aiUnavailable = "AI service is not configured"

// breakdownError maps generation failures to an HTTP status, code and message.
func breakdownError(err error) (int, string, string) {
	switch {
	case errors.Is(err, breakdown.ErrNotConfigured):
		return fiber.StatusServiceUnavailable, CodeExternalService, aiUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, CodeExternalService, "AI service timed out"
	case errors.Is(err, breakdown.ErrInvalidResponse):
		return fiber.StatusBadGateway, CodeExternalService, "AI service returned an invalid plan"
	}
	return fiber.StatusBadGateway, CodeExternalService, "Failed to generate breakdown"
}

func generate(c *fiber.Ctx, req breakdown.Request, opts breakdown.Options) error {
	if !services.AI.Configured() {
		return serviceUnavailable(c, aiUnavailable)
	}
	opts.Locale = requestLocale(c)

	result, err := services.AI.Generate(c.UserContext(), req, opts, nil)
	if err != nil {
		status, code, msg := breakdownError(err)
		logger.L().Warn("breakdown failed", "rid", middleware.RequestID(c), "error", err)
		return fail(c, status, code, msg)
	}
	return c.JSON(result)
}

// GenerateBreakdown plans the whole goal in one response.
func GenerateBreakdown(c *fiber.Ctx) error {
	var req breakdown.Request
	if err := bind(c, &req); err != nil {
		return err
	}
	return generate(c, req, breakdown.Options{})
}

func RegenerateBreakdown(c *fiber.Ctx) error {
	var req models.RegenerateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return generate(c, req.GoalData, breakdown.Options{Regenerate: true, Feedback: strings.TrimSpace(req.Feedback)})
}

type chunkEvent struct {
	Chunk       int                    `json:"chunk"`
	WeeklyGoals []breakdown.WeeklyGoal `json:"weeklyGoals"`
}

// sseWriter writes server-sent events and cancels the generation when the
// client goes away.
type sseWriter struct {
	w      *bufio.Writer
	cancel context.CancelFunc
	err    error
}

func (s *sseWriter) send(event string, v interface{}) {
	if s.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.err = err
		s.cancel()
		return
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		s.err = err
	} else {
		s.err = s.w.Flush()
	}
	if s.err != nil {
		s.cancel()
	}
}

func (s *sseWriter) Progress(p breakdown.Progress) { s.send("progress", p) }

func (s *sseWriter) Chunk(index int, weeks []breakdown.WeeklyGoal) {
	s.send("chunk", chunkEvent{Chunk: index, WeeklyGoals: weeks})
}

// StreamBreakdown generates chunk by chunk and streams progress, chunk,
// complete and error events.
func StreamBreakdown(c *fiber.Ctx) error {
	var req breakdown.Request
	if err := bind(c, &req); err != nil {
		return err
	}
	if !services.AI.Configured() {
		return serviceUnavailable(c, aiUnavailable)
	}

	// The fiber context is recycled once the handler returns, so everything
	// the writer needs is captured here.
	opts := breakdown.Options{Locale: requestLocale(c)}
	rid := middleware.RequestID(c)
	ai := services.AI

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sse := &sseWriter{w: w, cancel: cancel}
		result, err := ai.Generate(ctx, req, opts, sse)
		if err != nil {
			_, code, msg := breakdownError(err)
			logger.L().Warn("breakdown stream failed", "rid", rid, "error", err)
			sse.send("error", fiber.Map{"error": msg, "code": code})
			return
		}
		sse.send("complete", result)
	}))
	return nil
}

// SaveCompleteGoal stores a goal with its accepted breakdown in one
// transaction and returns the detailed goal.
func SaveCompleteGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.SaveGoalRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	smart := req.GoalData.Smart()
	if missing := smart.Missing(); len(missing) > 0 {
		return validationFailed(c, "goalData."+missing[0],
			fmt.Sprintf("Missing required SMART(ER) fields: %s", strings.Join(missing, ", ")))
	}
	if len(req.Breakdown.WeeklyGoals) == 0 {
		return validationFailed(c, "breakdown.weeklyGoals", "breakdown.weeklyGoals must contain at least one week")
	}

	goal := models.Goal{
		UserID:      userID,
		Title:       req.GoalData.GoalTitle(),
		Description: req.GoalData.Description,
		Category:    req.GoalData.Category,
		SmartFields: smart,
		Status:      models.GoalStatusActive,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&goal).Error; err != nil {
			return err
		}
		for _, wk := range req.Breakdown.WeeklyGoals {
			weekly := models.WeeklyGoal{
				GoalID:      goal.ID,
				Title:       wk.Title,
				Description: wk.Description,
				WeekNumber:  wk.WeekNumber,
				StartDate:   wk.StartDate,
				EndDate:     wk.EndDate,
				Status:      models.WeeklyStatusPending,
			}
			if err := tx.Create(&weekly).Error; err != nil {
				return err
			}
			if len(wk.Tasks) == 0 {
				continue
			}
			tasks := make([]models.Task, 0, len(wk.Tasks))
			for _, t := range wk.Tasks {
				tasks = append(tasks, models.Task{
					WeeklyGoalID:   weekly.ID,
					GoalID:         goal.ID,
					Title:          t.Title,
					Description:    t.Description,
					Priority:       t.Priority,
					EstimatedHours: t.EstimatedHours,
					Day:            t.Day,
					Date:           t.Date,
				})
			}
			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return internalError(c, "Failed to save goal", err)
	}

	if err := withPlan(database.DB).First(&goal, "id = ?", goal.ID).Error; err != nil {
		return internalError(c, "Failed to load goal", err)
	}

	LogActivity(userID, models.ActivityBreakdownSaved,
		fmt.Sprintf("Saved plan for %s (%d weeks)", goal.Title, len(goal.WeeklyGoals)),
		map[string]interface{}{"goalId": goal.ID, "goalTitle": goal.Title})
	WS.Publish(userID, EventBreakdownSaved, goal)

	return c.Status(fiber.StatusCreated).JSON(goal)
}
