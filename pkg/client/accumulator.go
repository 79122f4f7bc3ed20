package client

import (
	"context"
	"errors"
	"sync"
)

// ErrAccumulatorDetached is returned by Run after Detach.
var ErrAccumulatorDetached = errors.New("smartgoals: accumulator detached")

// GenerationState is the transient progress view of one generation.
type GenerationState struct {
	Message      string
	CurrentChunk int
	TotalChunks  int
	Fragments    []WeeklyGoal
	Running      bool
	Result       *Breakdown
}

// Accumulator folds a breakdown stream into a progress view. Progress
// events overwrite the counters, chunk events append fragments, and the
// server-assembled breakdown becomes the result on completion.
type Accumulator struct {
	mu       sync.Mutex
	state    GenerationState
	run      uint64
	detached bool
	onUpdate func(GenerationState)
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// OnUpdate registers fn to receive a copy of the state after every change.
func (a *Accumulator) OnUpdate(fn func(GenerationState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onUpdate = fn
}

// State returns a copy of the current state.
func (a *Accumulator) State() GenerationState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyLocked()
}

// Reset clears progress and result. Callers reset after a failed run.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	if a.detached {
		a.mu.Unlock()
		return
	}
	a.run++
	a.state = GenerationState{}
	snap, fn := a.copyLocked(), a.onUpdate
	a.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// Detach makes every later callback and resolution a no-op.
func (a *Accumulator) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detached = true
	a.onUpdate = nil
}

// Run resets the state, streams req through s and returns the final
// breakdown. On failure no result is recorded and the partial progress is
// left for the caller to inspect or Reset.
func (a *Accumulator) Run(ctx context.Context, s BreakdownStreamer, req BreakdownRequest) (*Breakdown, error) {
	a.mu.Lock()
	if a.detached {
		a.mu.Unlock()
		return nil, ErrAccumulatorDetached
	}
	a.run++
	id := a.run
	a.state = GenerationState{Running: true}
	snap, fn := a.copyLocked(), a.onUpdate
	a.mu.Unlock()
	if fn != nil {
		fn(snap)
	}

	bd, err := s.StreamBreakdown(ctx, req, StreamHandler{
		OnProgress: func(p Progress) {
			a.update(id, func(st *GenerationState) {
				st.Message = p.Message
				st.CurrentChunk = p.CurrentChunk
				st.TotalChunks = p.TotalChunks
			})
		},
		OnChunk: func(weeks []WeeklyGoal) {
			a.update(id, func(st *GenerationState) {
				st.Fragments = append(st.Fragments, weeks...)
			})
		},
	})

	a.update(id, func(st *GenerationState) {
		st.Running = false
		if err == nil {
			st.Result = bd
		}
	})
	return bd, err
}

// update applies fn if run id is still the current one and the owner is
// attached.
func (a *Accumulator) update(id uint64, fn func(*GenerationState)) {
	a.mu.Lock()
	if a.detached || a.run != id {
		a.mu.Unlock()
		return
	}
	fn(&a.state)
	snap, cb := a.copyLocked(), a.onUpdate
	a.mu.Unlock()
	if cb != nil {
		cb(snap)
	}
}

func (a *Accumulator) copyLocked() GenerationState {
	st := a.state
	if a.state.Fragments != nil {
		st.Fragments = append([]WeeklyGoal(nil), a.state.Fragments...)
	}
	return st
}
