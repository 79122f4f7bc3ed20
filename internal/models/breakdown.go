package models

import "github.com/arnold/smartgoals-api/internal/breakdown"

// RegenerateRequest asks for a fresh breakdown of goalData.
type RegenerateRequest struct {
	GoalData breakdown.Request `json:"goalData"`
	Feedback string            `json:"feedback" validate:"max=2000"`
}

// SaveGoalRequest stores a goal together with an accepted breakdown.
type SaveGoalRequest struct {
	GoalData  CreateGoalRequest   `json:"goalData"`
	Breakdown breakdown.Breakdown `json:"breakdown"`
}
