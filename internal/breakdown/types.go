// Package breakdown turns a SMART(ER) goal into weekly goals and daily tasks
// with an LLM, chunk by chunk, reporting progress as it goes.
package breakdown

import "errors"

var (
	// ErrNotConfigured means no AI provider credentials are available.
	ErrNotConfigured = errors.New("breakdown: AI service is not configured")
	// ErrInvalidResponse wraps model output that could not be repaired.
	ErrInvalidResponse = errors.New("breakdown: invalid response from AI service")
)

// Request holds the SMART(ER) fields and the deadline.
type Request struct {
	Specific   string `json:"specific" validate:"required,max=2000"`
	Measurable string `json:"measurable" validate:"required,max=2000"`
	Achievable string `json:"achievable" validate:"required,max=2000"`
	Relevant   string `json:"relevant" validate:"required,max=2000"`
	Timebound  string `json:"timebound" validate:"required,max=2000"`
	Exciting   string `json:"exciting" validate:"required,max=2000"`
	Deadline   string `json:"deadline" validate:"required,deadline"`
}

type Task struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Day            int    `json:"day"`
	Date           string `json:"date,omitempty"`
	Priority       string `json:"priority"`
	EstimatedHours int    `json:"estimatedHours"`
}

type WeeklyGoal struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	WeekNumber  int    `json:"weekNumber"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Tasks       []Task `json:"tasks"`
}

type Breakdown struct {
	WeeklyGoals []WeeklyGoal `json:"weeklyGoals"`
}

// Progress is emitted before each chunk is requested.
type Progress struct {
	Message      string `json:"message"`
	CurrentChunk int    `json:"currentChunk"`
	TotalChunks  int    `json:"totalChunks"`
}

// Options tune one generation.
type Options struct {
	// Feedback switches the prompt to regeneration mode.
	Feedback   string
	Regenerate bool
	// Locale selects the language of progress messages.
	Locale string
}

// Emitter receives progress and chunk events in order. Both methods are
// called from the generating goroutine.
type Emitter interface {
	Progress(p Progress)
	Chunk(index int, weeks []WeeklyGoal)
}

// EmitterFuncs adapts plain functions to Emitter. Nil fields are skipped.
type EmitterFuncs struct {
	OnProgress func(Progress)
	OnChunk    func(int, []WeeklyGoal)
}

func (e EmitterFuncs) Progress(p Progress) {
	if e.OnProgress != nil {
		e.OnProgress(p)
	}
}

func (e EmitterFuncs) Chunk(index int, weeks []WeeklyGoal) {
	if e.OnChunk != nil {
		e.OnChunk(index, weeks)
	}
}
