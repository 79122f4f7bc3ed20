package breakdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/arnold/smartgoals-api/internal/config"
	"github.com/arnold/smartgoals-api/internal/i18n"
	"github.com/arnold/smartgoals-api/internal/metrics"
)

const (
	defaultWeeksPerChunk = 4
	defaultMaxConcurrent = 4
	defaultTimeout       = 2 * time.Minute
)

// Service generates breakdowns chunk by chunk. At most MaxConcurrent
// generations run at once; the rest wait for a slot or their context.
type Service struct {
	gen           TextGenerator
	sem           *semaphore.Weighted
	weeksPerChunk int
	timeout       time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewService wraps gen. A nil gen yields a service that reports ErrNotConfigured.
func NewService(gen TextGenerator, cfg config.AIConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		gen:           gen,
		weeksPerChunk: cfg.WeeksPerChunk,
		timeout:       cfg.Timeout,
		logger:        logger,
		now:           time.Now,
	}
	if s.weeksPerChunk <= 0 {
		s.weeksPerChunk = defaultWeeksPerChunk
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = defaultMaxConcurrent
	}
	s.sem = semaphore.NewWeighted(int64(limit))
	return s
}

func (s *Service) Configured() bool {
	return s != nil && s.gen != nil
}

// Provider names the backing model provider, or "" when unconfigured.
func (s *Service) Provider() string {
	if !s.Configured() {
		return ""
	}
	return s.gen.Name()
}

// Generate plans every week up to the deadline. Progress and chunk events
// go to em (which may be nil) in order; the assembled breakdown is
// returned only when every chunk succeeded.
func (s *Service) Generate(ctx context.Context, req Request, opts Options, em Emitter) (*Breakdown, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if em == nil {
		em = EmitterFuncs{}
	}

	now := s.now()
	total, err := WeeksUntil(req.Deadline, now)
	if err != nil {
		return nil, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for generation slot: %w", err)
	}
	defer s.sem.Release(1)

	provider := s.gen.Name()
	start := time.Now()
	result, err := s.generate(ctx, req, opts, em, total, today)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordBreakdown(provider, status, time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("breakdown generation failed", "provider", provider, "weeks", total, "error", err)
		return nil, err
	}
	s.logger.Info("breakdown generated", "provider", provider, "weeks", total,
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (s *Service) generate(ctx context.Context, req Request, opts Options, em Emitter, total int, today time.Time) (*Breakdown, error) {
	chunks := Chunks(total, s.weeksPerChunk)
	out := &Breakdown{WeeklyGoals: make([]WeeklyGoal, 0, total)}

	for i, r := range chunks {
		em.Progress(Progress{
			Message:      i18n.T(opts.Locale, i18n.BreakdownPlanning, r.From, r.To),
			CurrentChunk: i + 1,
			TotalChunks:  len(chunks),
		})

		raw, err := s.gen.Generate(ctx, buildPrompt(req, total, r, opts))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("generate weeks %d-%d: %w", r.From, r.To, err)
		}
		weeks, err := parseChunk(raw, r, today)
		if err != nil {
			s.logger.Debug("unusable model reply", "weeks_from", r.From, "weeks_to", r.To, "reply", truncate(raw, 500))
			return nil, fmt.Errorf("weeks %d-%d: %w", r.From, r.To, err)
		}

		em.Chunk(i, weeks)
		out.WeeklyGoals = append(out.WeeklyGoals, weeks...)
	}

	em.Progress(Progress{
		Message:      i18n.T(opts.Locale, i18n.BreakdownAssembling),
		CurrentChunk: len(chunks),
		TotalChunks:  len(chunks),
	})
	sort.SliceStable(out.WeeklyGoals, func(a, b int) bool {
		return out.WeeklyGoals[a].WeekNumber < out.WeeklyGoals[b].WeekNumber
	})
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
