package client

import (
	"encoding/json"
	"time"
)

// GoalStatus is the lifecycle state of a goal. Any status may follow any other.
type GoalStatus string

const (
	StatusDraft     GoalStatus = "draft"
	StatusActive    GoalStatus = "active"
	StatusPaused    GoalStatus = "paused"
	StatusCompleted GoalStatus = "completed"
)

// Valid reports whether s is a known goal status.
func (s GoalStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Bio          string    `json:"bio"`
	AuthProvider string    `json:"authProvider"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message,omitempty"`
}

type Task struct {
	ID             string     `json:"id"`
	WeeklyGoalID   string     `json:"weeklyGoalId,omitempty"`
	GoalID         string     `json:"goalId,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Priority       string     `json:"priority"`
	EstimatedHours int        `json:"estimatedHours,omitempty"`
	Day            int        `json:"day,omitempty"`
	Date           string     `json:"date,omitempty"`
}

type WeeklyGoal struct {
	ID          string `json:"id,omitempty"`
	GoalID      string `json:"goalId,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	WeekNumber  int    `json:"weekNumber"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Progress    int    `json:"progress"`
	Status      string `json:"status,omitempty"`
	Tasks       []Task `json:"tasks"`
}

type Goal struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Specific    string       `json:"specific"`
	Measurable  string       `json:"measurable"`
	Achievable  string       `json:"achievable"`
	Relevant    string       `json:"relevant"`
	Timebound   string       `json:"timebound"`
	Exciting    string       `json:"exciting"`
	Deadline    string       `json:"deadline"`
	Progress    int          `json:"progress"`
	Status      GoalStatus   `json:"status"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	WeeklyGoals []WeeklyGoal `json:"weeklyGoals,omitempty"`
}

// BreakdownRequest carries the SMART(ER) fields a breakdown is generated from.
type BreakdownRequest struct {
	Specific   string `json:"specific"`
	Measurable string `json:"measurable"`
	Achievable string `json:"achievable"`
	Relevant   string `json:"relevant"`
	Timebound  string `json:"timebound"`
	Exciting   string `json:"exciting"`
	Deadline   string `json:"deadline"`
}

// Breakdown is the server-assembled plan: weekly goals ordered by week.
type Breakdown struct {
	WeeklyGoals []WeeklyGoal `json:"weeklyGoals"`
}

// NewGoal is the goal part of a save-complete request.
type NewGoal struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	BreakdownRequest
}

type TaskUpdate struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	Completed      *bool   `json:"completed,omitempty"`
	Priority       *string `json:"priority,omitempty"`
	EstimatedHours *int    `json:"estimatedHours,omitempty"`
	Date           *string `json:"date,omitempty"`
}

type GoalUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Deadline    *string     `json:"deadline,omitempty"`
	Status      *GoalStatus `json:"status,omitempty"`
	Progress    *int        `json:"progress,omitempty"`
}

type Settings struct {
	EmailNotifications  bool   `json:"emailNotifications"`
	PushNotifications   bool   `json:"pushNotifications"`
	WeeklyDigest        bool   `json:"weeklyDigest"`
	GoalReminders       bool   `json:"goalReminders"`
	DefaultGoalDuration string `json:"defaultGoalDuration"`
	AIBreakdownDetail   string `json:"aiBreakdownDetail"`
	Theme               string `json:"theme"`
	Language            string `json:"language"`
}

type SettingsUpdate struct {
	EmailNotifications  *bool   `json:"emailNotifications,omitempty"`
	PushNotifications   *bool   `json:"pushNotifications,omitempty"`
	WeeklyDigest        *bool   `json:"weeklyDigest,omitempty"`
	GoalReminders       *bool   `json:"goalReminders,omitempty"`
	DefaultGoalDuration *string `json:"defaultGoalDuration,omitempty"`
	AIBreakdownDetail   *string `json:"aiBreakdownDetail,omitempty"`
	Theme               *string `json:"theme,omitempty"`
	Language            *string `json:"language,omitempty"`
}

// LiveEvent is one message from the live update socket.
type LiveEvent struct {
	Type   string          `json:"type"`
	UserID string          `json:"userId"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Live event types.
const (
	EventTaskUpdated    = "task_updated"
	EventGoalUpdated    = "goal_updated"
	EventGoalDeleted    = "goal_deleted"
	EventBreakdownSaved = "breakdown_saved"
)

// Bool, String and Int return pointers for building partial updates.
func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }
func Int(v int) *int          { return &v }
