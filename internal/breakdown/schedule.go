package breakdown

import (
	"fmt"
	"strings"
	"time"
)

// MaxWeeks bounds a single plan; later deadlines are planned for this many weeks.
const MaxWeeks = 104

const dateLayout = "2006-01-02"

// ChunkRange is an inclusive range of week numbers requested in one call.
type ChunkRange struct {
	From int
	To   int
}

func (r ChunkRange) Len() int { return r.To - r.From + 1 }

// ParseDeadline accepts RFC3339 timestamps and plain dates.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q: want RFC3339 or YYYY-MM-DD", s)
}

// WeeksUntil counts whole weeks between now and the deadline, where a
// partial day counts as a full one. The result is at least 1.
func WeeksUntil(deadline string, now time.Time) (int, error) {
	t, err := ParseDeadline(deadline)
	if err != nil {
		return 0, err
	}
	diff := t.Sub(now)
	if diff <= 0 {
		return 1, nil
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	weeks := days / 7
	if weeks < 1 {
		weeks = 1
	}
	if weeks > MaxWeeks {
		weeks = MaxWeeks
	}
	return weeks, nil
}

// Chunks splits weeks 1..total into consecutive ranges of at most per weeks.
func Chunks(total, per int) []ChunkRange {
	if total < 1 {
		total = 1
	}
	if per < 1 {
		per = total
	}
	var out []ChunkRange
	for from := 1; from <= total; from += per {
		to := from + per - 1
		if to > total {
			to = total
		}
		out = append(out, ChunkRange{From: from, To: to})
	}
	return out
}

// weekDates returns the start and end date of week n counted from start.
func weekDates(start time.Time, n int) (string, string) {
	begin := start.AddDate(0, 0, (n-1)*7)
	return begin.Format(dateLayout), begin.AddDate(0, 0, 6).Format(dateLayout)
}
