package client

import (
	"context"

	"github.com/arnold/smartgoals-api/pkg/optimistic"
)

// TaskGateway is the remote mutation endpoint for tasks.
type TaskGateway interface {
	UpdateTask(ctx context.Context, id string, u TaskUpdate) (*Task, error)
}

// GoalGateway is the remote mutation endpoint for goals.
type GoalGateway interface {
	UpdateGoal(ctx context.Context, id string, u GoalUpdate) (*Goal, error)
}

// BreakdownStreamer runs a streaming breakdown generation.
type BreakdownStreamer interface {
	StreamBreakdown(ctx context.Context, req BreakdownRequest, h StreamHandler) (*Breakdown, error)
}

var (
	_ TaskGateway       = (*Client)(nil)
	_ GoalGateway       = (*Client)(nil)
	_ BreakdownStreamer = (*Client)(nil)
)

// TaskCompletion turns a task gateway into the apply function of a
// completion cell. The returned entity is ignored: only failure rolls back.
func TaskCompletion(gw TaskGateway, id string) optimistic.ApplyFunc[bool] {
	return func(ctx context.Context, done bool) error {
		_, err := gw.UpdateTask(ctx, id, TaskUpdate{Completed: &done})
		return err
	}
}

// GoalStatusUpdate turns a goal gateway into the apply function of a
// status cell.
func GoalStatusUpdate(gw GoalGateway, id string) optimistic.ApplyFunc[GoalStatus] {
	return func(ctx context.Context, s GoalStatus) error {
		_, err := gw.UpdateGoal(ctx, id, GoalUpdate{Status: &s})
		return err
	}
}

// NewTaskCell returns a completion cell for t keyed "task:<id>".
func NewTaskCell(gw TaskGateway, t Task, opts ...optimistic.Option) *optimistic.Cell[bool] {
	return optimistic.New("task:"+t.ID, t.Completed, TaskCompletion(gw, t.ID), opts...)
}

// NewGoalStatusCell returns a status cell for g keyed "goal:<id>".
func NewGoalStatusCell(gw GoalGateway, g Goal, opts ...optimistic.Option) *optimistic.Cell[GoalStatus] {
	return optimistic.New("goal:"+g.ID, g.Status, GoalStatusUpdate(gw, g.ID), opts...)
}
