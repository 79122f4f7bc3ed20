package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is one daily task inside a weekly goal.
type Task struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	WeeklyGoalID   uuid.UUID      `json:"weeklyGoalId" gorm:"type:uuid;index;not null"`
	GoalID         uuid.UUID      `json:"goalId" gorm:"type:uuid;index;not null"`
	Title          string         `json:"title" gorm:"not null"`
	Description    string         `json:"description"`
	Completed      bool           `json:"completed"`
	CompletedAt    *time.Time     `json:"completedAt"`
	Priority       string         `json:"priority" gorm:"not null"`
	EstimatedHours int            `json:"estimatedHours"`
	Day            int            `json:"day"`
	Date           string         `json:"date"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Task) TableName() string { return "daily_tasks" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.EstimatedHours == 0 {
		t.EstimatedHours = 1
	}
	return nil
}

// UpdateTaskRequest has no identity fields, so ids, goal links and
// timestamps in a request body are ignored.
type UpdateTaskRequest struct {
	Title          *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string `json:"description" validate:"omitempty,max=500"`
	Completed      *bool   `json:"completed"`
	Priority       *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	EstimatedHours *int    `json:"estimatedHours" validate:"omitempty,min=1,max=24"`
	Date           *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}
