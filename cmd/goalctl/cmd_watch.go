package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arnold/smartgoals-api/pkg/client"
	"github.com/arnold/smartgoals-api/pkg/optimistic"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <goal-id>",
		Short: "Follow live changes to a goal and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: authed(func(cmd *cobra.Command, s *session, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			goal, err := s.client.GetGoal(ctx, args[0])
			if err != nil {
				return err
			}
			w := newGoalWatcher(s, goal)
			defer w.detach()

			s.printf("Watching %s (%s), Ctrl-C to stop\n", goal.Title, goal.Status)
			return s.client.Subscribe(ctx, func(ev client.LiveEvent) {
				if w.apply(ev) {
					stop()
				}
			})
		}),
	}
}

// goalWatcher mirrors one goal into optimistic cells and resyncs them from
// live events.
type goalWatcher struct {
	s      *session
	goalID string
	status *optimistic.Cell[client.GoalStatus]
	tasks  map[string]*optimistic.Cell[bool]
}

func newGoalWatcher(s *session, g *client.Goal) *goalWatcher {
	w := &goalWatcher{
		s:      s,
		goalID: g.ID,
		status: client.NewGoalStatusCell(s.client, *g, optimistic.WithLogger(s.logger)),
		tasks:  map[string]*optimistic.Cell[bool]{},
	}
	lastStatus := g.Status
	w.status.OnChange(func(snap optimistic.Snapshot[client.GoalStatus]) {
		if snap.Value != lastStatus {
			lastStatus = snap.Value
			s.printf("goal %s\n", snap.Value)
		}
	})
	for _, wk := range g.WeeklyGoals {
		for _, t := range wk.Tasks {
			cell := client.NewTaskCell(s.client, t, optimistic.WithLogger(s.logger))
			title, last := t.Title, t.Completed
			cell.OnChange(func(snap optimistic.Snapshot[bool]) {
				if snap.Value != last {
					last = snap.Value
					s.printf("%s %s\n", checkbox(snap.Value), title)
				}
			})
			w.tasks[t.ID] = cell
		}
	}
	return w
}

// apply syncs cells from ev and reports whether watching should stop.
func (w *goalWatcher) apply(ev client.LiveEvent) bool {
	switch ev.Type {
	case client.EventTaskUpdated:
		var t client.Task
		if err := json.Unmarshal(ev.Data, &t); err != nil || t.GoalID != w.goalID {
			return false
		}
		if cell, ok := w.tasks[t.ID]; ok {
			cell.Sync(t.Completed)
		}
	case client.EventGoalUpdated:
		var g client.Goal
		if err := json.Unmarshal(ev.Data, &g); err != nil || g.ID != w.goalID {
			return false
		}
		w.status.Sync(g.Status)
	case client.EventGoalDeleted:
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(ev.Data, &ref); err == nil && ref.ID == w.goalID {
			w.s.printf("goal deleted\n")
			return true
		}
	}
	return false
}

func (w *goalWatcher) detach() {
	w.status.Detach()
	for _, c := range w.tasks {
		c.Detach()
	}
}

