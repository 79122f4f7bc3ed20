package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/smartgoals-api/internal/breakdown"
)

const (
	GoalStatusDraft     = "draft"
	GoalStatusActive    = "active"
	GoalStatusPaused    = "paused"
	GoalStatusCompleted = "completed"
)

var GoalCategories = []string{"Health", "Work", "Family", "Personal"}

// SmartFields are the SMART(ER) answers a goal is planned from.
type SmartFields struct {
	Specific   string `json:"specific"`
	Measurable string `json:"measurable"`
	Achievable string `json:"achievable"`
	Relevant   string `json:"relevant"`
	Timebound  string `json:"timebound"`
	Exciting   string `json:"exciting"`
	Deadline   string `json:"deadline"`
}

// Missing lists the json names of empty fields.
func (s SmartFields) Missing() []string {
	var out []string
	for _, f := range []struct {
		name, v string
	}{
		{"specific", s.Specific}, {"measurable", s.Measurable}, {"achievable", s.Achievable},
		{"relevant", s.Relevant}, {"timebound", s.Timebound}, {"exciting", s.Exciting},
		{"deadline", s.Deadline},
	} {
		if f.v == "" {
			out = append(out, f.name)
		}
	}
	return out
}

func (s SmartFields) BreakdownRequest() breakdown.Request {
	return breakdown.Request{
		Specific:   s.Specific,
		Measurable: s.Measurable,
		Achievable: s.Achievable,
		Relevant:   s.Relevant,
		Timebound:  s.Timebound,
		Exciting:   s.Exciting,
		Deadline:   s.Deadline,
	}
}

type Goal struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Category    string    `json:"category" gorm:"not null"`
	SmartFields `gorm:"embedded"`
	Progress    int            `json:"progress" gorm:"default:0"`
	Status      string         `json:"status" gorm:"not null;index"` // draft, active, paused, completed
	CompletedAt *time.Time     `json:"completedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	WeeklyGoals []WeeklyGoal   `json:"weeklyGoals,omitempty" gorm:"foreignKey:GoalID"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = GoalStatusActive
	}
	return nil
}

type CreateGoalRequest struct {
	Title       string `json:"title" validate:"omitempty,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category" validate:"required,oneof=Health Work Family Personal"`
	Specific    string `json:"specific" validate:"max=500"`
	Measurable  string `json:"measurable" validate:"max=500"`
	Achievable  string `json:"achievable" validate:"max=500"`
	Relevant    string `json:"relevant" validate:"max=500"`
	Timebound   string `json:"timebound" validate:"max=500"`
	Exciting    string `json:"exciting" validate:"max=500"`
	Deadline    string `json:"deadline" validate:"omitempty,deadline"`
}

func (r *CreateGoalRequest) Smart() SmartFields {
	return SmartFields{
		Specific:   r.Specific,
		Measurable: r.Measurable,
		Achievable: r.Achievable,
		Relevant:   r.Relevant,
		Timebound:  r.Timebound,
		Exciting:   r.Exciting,
		Deadline:   r.Deadline,
	}
}

// GoalTitle is the explicit title or, failing that, the start of the
// specific answer.
func (r *CreateGoalRequest) GoalTitle() string {
	if r.Title != "" {
		return r.Title
	}
	t := []rune(r.Specific)
	if len(t) > 100 {
		t = t[:100]
	}
	if len(t) == 0 {
		return "Untitled goal"
	}
	return string(t)
}

type UpdateGoalRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Category    *string `json:"category" validate:"omitempty,oneof=Health Work Family Personal"`
	Specific    *string `json:"specific" validate:"omitempty,min=1,max=500"`
	Measurable  *string `json:"measurable" validate:"omitempty,min=1,max=500"`
	Achievable  *string `json:"achievable" validate:"omitempty,min=1,max=500"`
	Relevant    *string `json:"relevant" validate:"omitempty,min=1,max=500"`
	Timebound   *string `json:"timebound" validate:"omitempty,min=1,max=500"`
	Exciting    *string `json:"exciting" validate:"omitempty,min=1,max=500"`
	Deadline    *string `json:"deadline" validate:"omitempty,deadline"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft active paused completed"`
	Progress    *int    `json:"progress" validate:"omitempty,min=0,max=100"`
}

// Changes returns the column updates for the non-nil fields.
func (r *UpdateGoalRequest) Changes() map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	set("title", r.Title)
	set("description", r.Description)
	set("category", r.Category)
	set("specific", r.Specific)
	set("measurable", r.Measurable)
	set("achievable", r.Achievable)
	set("relevant", r.Relevant)
	set("timebound", r.Timebound)
	set("exciting", r.Exciting)
	set("deadline", r.Deadline)
	set("status", r.Status)
	if r.Progress != nil {
		updates["progress"] = *r.Progress
	}
	return updates
}
