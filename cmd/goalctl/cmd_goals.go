package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arnold/smartgoals-api/pkg/client"
	"github.com/arnold/smartgoals-api/pkg/optimistic"
)

func newGoalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List goals",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List your goals",
		RunE: authed(func(cmd *cobra.Command, s *session, args []string) error {
			detailed, _ := cmd.Flags().GetBool("detailed")
			var (
				goals []client.Goal
				err   error
			)
			if detailed {
				goals, err = s.client.ListGoalsDetailed(cmd.Context())
			} else {
				goals, err = s.client.ListGoals(cmd.Context())
			}
			if err != nil {
				return err
			}
			printGoals(s, goals, detailed)
			return nil
		}),
	}
	list.Flags().Bool("detailed", false, "include weekly goals and tasks")
	cmd.AddCommand(list)
	return cmd
}

func printGoals(s *session, goals []client.Goal, detailed bool) {
	if len(goals) == 0 {
		s.printf("No goals yet\n")
		return
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tSTATUS\tPROGRESS")
	for _, g := range goals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\n", g.ID, g.Title, g.Category, g.Status, g.Progress)
	}
	w.Flush()

	if !detailed {
		return
	}
	for _, g := range goals {
		s.printf("\n%s\n", g.Title)
		for _, wk := range g.WeeklyGoals {
			s.printf("  Week %d: %s (%d%%)\n", wk.WeekNumber, wk.Title, wk.Progress)
			for _, t := range wk.Tasks {
				s.printf("    %s %s  %s\n", checkbox(t.Completed), t.ID, t.Title)
			}
		}
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Change a goal",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status <goal-id> <draft|active|paused|completed>",
		Short: "Change a goal's status",
		Args:  cobra.ExactArgs(2),
		RunE: authed(func(cmd *cobra.Command, s *session, args []string) error {
			status := client.GoalStatus(args[1])
			if !status.Valid() {
				return fmt.Errorf("unknown status %q (draft, active, paused, completed)", args[1])
			}
			goal, err := s.client.GetGoal(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cell := client.NewGoalStatusCell(s.client, *goal, optimistic.WithLogger(s.logger))
			cell.OnChange(func(snap optimistic.Snapshot[client.GoalStatus]) {
				s.logger.Debug("goal status", "value", snap.Value, "updating", snap.Updating)
			})
			err = cell.Set(cmd.Context(), status)
			s.printf("%s: %s\n", goal.Title, cell.Value())
			return err
		}),
	})
	return cmd
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Change a task",
	}
	toggle := &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task's completion, or set it with --done/--undone",
		Args:  cobra.ExactArgs(1),
		RunE: authed(func(cmd *cobra.Command, s *session, args []string) error {
			task, err := s.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			target := !task.Completed
			if cmd.Flags().Changed("done") {
				target, _ = cmd.Flags().GetBool("done")
			}
			if undone, _ := cmd.Flags().GetBool("undone"); undone {
				target = false
			}

			cell := client.NewTaskCell(s.client, *task, optimistic.WithLogger(s.logger))
			err = cell.Set(cmd.Context(), target)
			s.printf("%s %s\n", checkbox(cell.Value()), task.Title)
			return err
		}),
	}
	toggle.Flags().Bool("done", false, "mark the task completed")
	toggle.Flags().Bool("undone", false, "mark the task not completed")
	toggle.MarkFlagsMutuallyExclusive("done", "undone")
	cmd.AddCommand(toggle)
	return cmd
}
