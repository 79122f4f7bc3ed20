package breakdown

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an expert goal coach and project manager. " +
	"Provide detailed, actionable goal breakdowns in JSON format."

const (
	generateTemperature   = 0.7
	regenerateTemperature = 0.8
	maxTokens             = 4000
)

// Prompt is a provider-neutral chat request.
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

const responseFormat = `{
  "weeklyGoals": [
    {
      "title": "Week title",
      "description": "What will be accomplished this week",
      "weekNumber": %d,
      "tasks": [
        {
          "title": "Specific task title",
          "description": "Detailed task description",
          "day": 1,
          "priority": "medium",
          "estimatedHours": 2
        }
      ]
    }
  ]
}`

func buildPrompt(req Request, totalWeeks int, r ChunkRange, opts Options) Prompt {
	var b strings.Builder

	if opts.Regenerate {
		b.WriteString("Regenerate a breakdown for this SMART(ER) goal with improvements.\n\n")
	} else {
		b.WriteString("Break down the following SMART(ER) goal into a weekly plan with daily tasks.\n\n")
	}

	b.WriteString("GOAL DETAILS:\n")
	fmt.Fprintf(&b, "- Specific: %s\n", req.Specific)
	fmt.Fprintf(&b, "- Measurable: %s\n", req.Measurable)
	fmt.Fprintf(&b, "- Achievable: %s\n", req.Achievable)
	fmt.Fprintf(&b, "- Relevant: %s\n", req.Relevant)
	fmt.Fprintf(&b, "- Time-bound: %s\n", req.Timebound)
	fmt.Fprintf(&b, "- Exciting: %s\n", req.Exciting)
	fmt.Fprintf(&b, "- Deadline: %s\n", req.Deadline)
	fmt.Fprintf(&b, "- Total weeks available: %d\n\n", totalWeeks)

	if opts.Regenerate {
		if opts.Feedback != "" {
			fmt.Fprintf(&b, "USER FEEDBACK: %s\n\n", opts.Feedback)
		} else {
			b.WriteString("Provide a different approach with alternative task sequencing and timing.\n\n")
		}
	}

	if r.From == r.To {
		fmt.Fprintf(&b, "Plan ONLY week %d of %d.\n", r.From, totalWeeks)
	} else {
		fmt.Fprintf(&b, "Plan ONLY weeks %d to %d of %d, one weekly goal per week.\n", r.From, r.To, totalWeeks)
	}
	b.WriteString("For each week provide 3-7 specific daily tasks that are actionable, measurable and realistic.\n")
	b.WriteString("Use priority low, medium or high, estimate 1-8 hours per task, and use day 1-7 for the day of the week.\n")
	b.WriteString("Tasks should build on each other progressively.\n\n")
	b.WriteString("Return the response in this exact JSON format:\n")
	fmt.Fprintf(&b, responseFormat, r.From)

	temp := float32(generateTemperature)
	if opts.Regenerate {
		temp = regenerateTemperature
	}
	return Prompt{
		System:      systemPrompt,
		User:        b.String(),
		Temperature: temp,
		MaxTokens:   maxTokens,
	}
}
