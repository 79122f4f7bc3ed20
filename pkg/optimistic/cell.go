// Package optimistic keeps a locally displayed copy of a server-owned value
// that changes immediately on user action and is confirmed or rolled back
// once the remote mutation settles.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrDetached is returned by Set after the owner called Detach.
var ErrDetached = errors.New("optimistic: cell detached")

// ApplyFunc performs the remote mutation for a requested value.
type ApplyFunc[T any] func(ctx context.Context, value T) error

// ReportFunc receives every failed mutation exactly once.
type ReportFunc func(key string, err error)

// Snapshot is the observable state of a cell.
type Snapshot[T any] struct {
	Value    T
	Updating bool
}

type options struct {
	logger *slog.Logger
	report ReportFunc
}

// Option configures a Cell.
type Option func(*options)

// WithLogger sets the logger used by the default failure reporter.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithReporter replaces the default reporter, which logs at warn level.
func WithReporter(r ReportFunc) Option {
	return func(o *options) {
		if r != nil {
			o.report = r
		}
	}
}

type action[T any] struct {
	seq    uint64
	target T
}

// Cell mirrors one server-owned value. The latest issued action owns the
// display: a success confirms its target and drops every earlier pending
// action, a failure drops only itself and the display falls back to the
// newest surviving action or, when none is left, to the confirmed value.
type Cell[T any] struct {
	key    string
	apply  ApplyFunc[T]
	logger *slog.Logger
	report ReportFunc

	mu        sync.Mutex
	confirmed T
	display   T
	pending   []action[T]
	seq       uint64
	detached  bool
	observers []func(Snapshot[T])
}

// New creates a cell showing initial. key identifies the entity in error
// reports, e.g. "task:42".
func New[T any](key string, initial T, apply ApplyFunc[T], opts ...Option) *Cell[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Cell[T]{
		key:       key,
		apply:     apply,
		logger:    o.logger,
		report:    o.report,
		confirmed: initial,
		display:   initial,
	}
	if c.report == nil {
		c.report = c.logFailure
	}
	return c
}

// Key returns the entity key the cell was created with.
func (c *Cell[T]) Key() string { return c.key }

// Snapshot returns the displayed value and whether any action is in flight.
func (c *Cell[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Value returns the displayed value.
func (c *Cell[T]) Value() T { return c.Snapshot().Value }

// Updating reports whether an action is in flight.
func (c *Cell[T]) Updating() bool { return c.Snapshot().Updating }

// OnChange registers fn to receive every new snapshot. Observers run on
// the goroutine that caused the change, outside the cell's lock.
func (c *Cell[T]) OnChange(fn func(Snapshot[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return
	}
	c.observers = append(c.observers, fn)
}

// Set displays v immediately, runs the remote mutation and settles the
// result. The failure is reported once and also returned; it never panics.
func (c *Cell[T]) Set(ctx context.Context, v T) error {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return ErrDetached
	}
	c.seq++
	a := action[T]{seq: c.seq, target: v}
	c.pending = append(c.pending, a)
	c.display = v
	snap, obs := c.snapshotLocked(), c.observersLocked()
	c.mu.Unlock()
	notify(obs, snap)

	err := c.run(ctx, v)
	c.settle(a, err)
	if err != nil {
		return fmt.Errorf("update %s: %w", c.key, err)
	}
	return nil
}

// Sync applies an externally refreshed authoritative value. While idle the
// display follows immediately; while updating v only becomes the value a
// full rollback lands on.
func (c *Cell[T]) Sync(v T) {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return
	}
	c.confirmed = v
	if len(c.pending) > 0 {
		c.mu.Unlock()
		return
	}
	c.display = v
	snap, obs := c.snapshotLocked(), c.observersLocked()
	c.mu.Unlock()
	notify(obs, snap)
}

// Detach marks the owner as gone. Settlements arriving afterwards neither
// touch the state nor notify observers.
func (c *Cell[T]) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
	c.observers = nil
}

func (c *Cell[T]) run(ctx context.Context, v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("apply panicked: %v", r)
		}
	}()
	return c.apply(ctx, v)
}

func (c *Cell[T]) settle(a action[T], err error) {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return
	}

	idx := -1
	for i, p := range c.pending {
		if p.seq == a.seq {
			idx = i
			break
		}
	}

	if idx < 0 {
		// superseded by a later success
		c.mu.Unlock()
		if err != nil {
			c.report(c.key, err)
		}
		return
	}

	if err == nil {
		c.confirmed = a.target
		c.pending = append([]action[T](nil), c.pending[idx+1:]...)
	} else {
		c.pending = append(c.pending[:idx:idx], c.pending[idx+1:]...)
	}

	if n := len(c.pending); n > 0 {
		c.display = c.pending[n-1].target
	} else {
		c.display = c.confirmed
	}
	snap, obs := c.snapshotLocked(), c.observersLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("optimistic rollback", "key", c.key, "target", a.target, "display", snap.Value)
		c.report(c.key, err)
	}
	notify(obs, snap)
}

func (c *Cell[T]) logFailure(key string, err error) {
	c.logger.Warn("optimistic update failed", "key", key, "error", err)
}

func (c *Cell[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{Value: c.display, Updating: len(c.pending) > 0}
}

func (c *Cell[T]) observersLocked() []func(Snapshot[T]) {
	if len(c.observers) == 0 {
		return nil
	}
	obs := make([]func(Snapshot[T]), len(c.observers))
	copy(obs, c.observers)
	return obs
}

func notify[T any](obs []func(Snapshot[T]), s Snapshot[T]) {
	for _, fn := range obs {
		fn(s)
	}
}
