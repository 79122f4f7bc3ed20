package breakdown

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type rawTask struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Day            float64 `json:"day"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimatedHours"`
}

type rawWeek struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	WeekNumber  float64   `json:"weekNumber"`
	Tasks       []rawTask `json:"tasks"`
}

type rawChunk struct {
	WeeklyGoals []rawWeek `json:"weeklyGoals"`
}

// extractJSON strips markdown fences and any prose around the outermost object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		return s
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// parseChunk decodes, repairs and validates one model reply for weeks r.
func parseChunk(raw string, r ChunkRange, today time.Time) ([]WeeklyGoal, error) {
	var doc any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if arr, ok := doc.([]any); ok {
		doc = map[string]any{"weeklyGoals": arr}
	}
	coerceNumbers(doc)
	if err := validateChunk(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	var chunk rawChunk
	if err := json.Unmarshal(buf, &chunk); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return normalizeWeeks(chunk.WeeklyGoals, r, today), nil
}

// coerceNumbers turns numeric strings in the known numeric fields into numbers.
func coerceNumbers(doc any) {
	root, ok := doc.(map[string]any)
	if !ok {
		return
	}
	weeks, _ := root["weeklyGoals"].([]any)
	for _, w := range weeks {
		week, ok := w.(map[string]any)
		if !ok {
			continue
		}
		coerceField(week, "weekNumber")
		tasks, _ := week["tasks"].([]any)
		for _, t := range tasks {
			if task, ok := t.(map[string]any); ok {
				coerceField(task, "day")
				coerceField(task, "estimatedHours")
			}
		}
	}
}

func coerceField(m map[string]any, key string) {
	s, ok := m[key].(string)
	if !ok {
		return
	}
	if n, ok := leadingNumber(s); ok {
		m[key] = n
	} else {
		delete(m, key)
	}
}

// leadingNumber parses "3", "2.5" or "2 hours".
func leadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func normalizeWeeks(in []rawWeek, r ChunkRange, today time.Time) []WeeklyGoal {
	if len(in) > r.Len() {
		in = in[:r.Len()]
	}
	used := make(map[int]bool, len(in))
	out := make([]WeeklyGoal, 0, len(in))
	for _, w := range in {
		wn := int(w.WeekNumber)
		if wn < r.From || wn > r.To || used[wn] {
			wn = firstUnused(r, used)
		}
		used[wn] = true

		start, end := weekDates(today, wn)
		week := WeeklyGoal{
			Title:       strings.TrimSpace(w.Title),
			Description: strings.TrimSpace(w.Description),
			WeekNumber:  wn,
			StartDate:   start,
			EndDate:     end,
			Tasks:       make([]Task, 0, len(w.Tasks)),
		}
		if week.Title == "" {
			week.Title = fmt.Sprintf("Week %d", wn)
		}
		weekStart := today.AddDate(0, 0, (wn-1)*7)
		for _, t := range w.Tasks {
			title := strings.TrimSpace(t.Title)
			if title == "" {
				continue
			}
			day := clamp(int(t.Day), 1, 7)
			week.Tasks = append(week.Tasks, Task{
				Title:          title,
				Description:    strings.TrimSpace(t.Description),
				Day:            day,
				Date:           weekStart.AddDate(0, 0, day-1).Format(dateLayout),
				Priority:       normalizePriority(t.Priority),
				EstimatedHours: clamp(int(math.Round(t.EstimatedHours)), 1, 8),
			})
		}
		out = append(out, week)
	}
	return out
}

func firstUnused(r ChunkRange, used map[int]bool) int {
	for n := r.From; n <= r.To; n++ {
		if !used[n] {
			return n
		}
	}
	return r.To
}

func normalizePriority(p string) string {
	switch p = strings.ToLower(strings.TrimSpace(p)); p {
	case "low", "medium", "high":
		return p
	}
	return "medium"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
