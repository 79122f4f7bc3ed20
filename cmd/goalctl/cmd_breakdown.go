package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arnold/smartgoals-api/pkg/client"
)

var smartFlags = []string{"specific", "measurable", "achievable", "relevant", "timebound", "exciting", "deadline"}

func newBreakdownCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "breakdown",
		Short: "Generate a weekly plan for a goal, streaming progress",
		RunE: authed(func(cmd *cobra.Command, s *session, args []string) error {
			values := map[string]string{}
			var missing []string
			for _, name := range smartFlags {
				v, _ := cmd.Flags().GetString(name)
				if strings.TrimSpace(v) == "" {
					missing = append(missing, "--"+name)
				}
				values[name] = v
			}
			if len(missing) > 0 {
				return errors.New("missing " + strings.Join(missing, ", "))
			}
			req := client.BreakdownRequest{
				Specific:   values["specific"],
				Measurable: values["measurable"],
				Achievable: values["achievable"],
				Relevant:   values["relevant"],
				Timebound:  values["timebound"],
				Exciting:   values["exciting"],
				Deadline:   values["deadline"],
			}

			acc := client.NewAccumulator()
			defer acc.Detach()
			lastMessage, lastFragments := "", 0
			acc.OnUpdate(func(st client.GenerationState) {
				if st.Message != "" && st.Message != lastMessage {
					lastMessage = st.Message
					s.printf("[%d/%d] %s\n", st.CurrentChunk, st.TotalChunks, st.Message)
				}
				if lastFragments > len(st.Fragments) {
					lastFragments = 0
				}
				for _, w := range st.Fragments[lastFragments:] {
					s.printf("  week %d: %s (%d tasks)\n", w.WeekNumber, w.Title, len(w.Tasks))
				}
				lastFragments = len(st.Fragments)
			})

			bd, err := acc.Run(cmd.Context(), s.client, req)
			if err != nil {
				return err
			}
			s.printf("Plan ready: %d weeks\n", len(bd.WeeklyGoals))

			if save, _ := cmd.Flags().GetBool("save"); !save {
				return nil
			}
			title, _ := cmd.Flags().GetString("title")
			category, _ := cmd.Flags().GetString("category")
			goal, err := s.client.SaveGoal(cmd.Context(), client.NewGoal{
				Title:            title,
				Category:         category,
				BreakdownRequest: req,
			}, *bd)
			if err != nil {
				return err
			}
			s.printf("Saved goal %s (%s)\n", goal.Title, goal.ID)
			return nil
		}),
	}
	c.Flags().String("specific", "", "what exactly you want to achieve")
	c.Flags().String("measurable", "", "how progress is measured")
	c.Flags().String("achievable", "", "why it is achievable")
	c.Flags().String("relevant", "", "why it matters")
	c.Flags().String("timebound", "", "the time frame")
	c.Flags().String("exciting", "", "what makes it exciting")
	c.Flags().String("deadline", "", "deadline, YYYY-MM-DD or RFC3339")
	c.Flags().Bool("save", false, "save the goal with the generated plan")
	c.Flags().String("title", "", "goal title when saving")
	c.Flags().String("category", "Personal", "goal category when saving (Health, Work, Family, Personal)")
	return c
}
