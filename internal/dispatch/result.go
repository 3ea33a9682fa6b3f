package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/TheMichaelB/scryptbridge/internal/models"
)

// ErrAlreadyCompleted is returned by a second attempt to complete a Result.
var ErrAlreadyCompleted = errors.New("result already completed")

// State is the lifecycle position of a dispatched task.
type State int32

const (
	StatePending State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Callback receives the outcome of a task exactly once.
type Callback func(models.Outcome)

// Result is the single-fire handle of one dispatched task.
type Result struct {
	id       string
	state    atomic.Int32
	once     sync.Once
	done     chan struct{}
	outcome  models.Outcome
	callback Callback
}

func newResult(id string, callback Callback) *Result {
	return &Result{
		id:       id,
		done:     make(chan struct{}),
		callback: callback,
	}
}

// ID returns the task identifier.
func (r *Result) ID() string {
	return r.id
}

// State returns the current lifecycle state.
func (r *Result) State() State {
	return State(r.state.Load())
}

// Done is closed once the outcome is available.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Outcome returns the outcome and whether it is available yet.
func (r *Result) Outcome() (models.Outcome, bool) {
	select {
	case <-r.done:
		return r.outcome, true
	default:
		return models.Outcome{}, false
	}
}

// Wait blocks until the outcome is available or ctx ends. Giving up on the
// wait leaves the task running.
func (r *Result) Wait(ctx context.Context) (models.Outcome, error) {
	select {
	case <-r.done:
		return r.outcome, nil
	case <-ctx.Done():
		return models.Outcome{}, ctx.Err()
	}
}

func (r *Result) start() bool {
	return r.state.CompareAndSwap(int32(StatePending), int32(StateRunning))
}

// complete stores the outcome and fires the callback. Only the first call
// has any effect.
func (r *Result) complete(outcome models.Outcome) error {
	first := false
	r.once.Do(func() {
		first = true
		r.outcome = outcome
		r.state.Store(int32(StateCompleted))
		close(r.done)
	})
	if !first {
		return ErrAlreadyCompleted
	}

	if r.callback != nil {
		r.callback(outcome)
	}
	return nil
}
