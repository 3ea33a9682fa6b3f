package dispatch

import (
	"fmt"

	"github.com/panjf2000/ants/v2"

	"github.com/TheMichaelB/scryptbridge/internal/events"
)

// Pool runs units of work off the caller's goroutine. Submit must not
// block on the work itself.
type Pool interface {
	Submit(task func()) error
}

// PoolFunc adapts a function to the Pool interface.
type PoolFunc func(task func()) error

// Submit calls f.
func (f PoolFunc) Submit(task func()) error {
	return f(task)
}

// GoroutinePool starts one goroutine per task.
type GoroutinePool struct{}

// Submit runs task on a new goroutine.
func (GoroutinePool) Submit(task func()) error {
	go task()
	return nil
}

// AntsPool is an unbounded ants worker pool.
type AntsPool struct {
	pool *ants.Pool
}

// NewAntsPool creates an ants pool without a size limit. Idle workers are
// recycled by ants; panics escaping a task are logged.
func NewAntsPool(logger *events.Logger) (*AntsPool, error) {
	logger = logger.WithField("component", "worker_pool")

	pool, err := ants.NewPool(-1,
		ants.WithLogger(logger),
		ants.WithPanicHandler(func(p interface{}) {
			logger.WithField("panic", fmt.Sprint(p)).Error("Worker task panicked")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &AntsPool{pool: pool}, nil
}

// Submit queues task on the pool.
func (p *AntsPool) Submit(task func()) error {
	return p.pool.Submit(task)
}

// Running returns the number of busy workers.
func (p *AntsPool) Running() int {
	return p.pool.Running()
}

// Release stops accepting tasks. Tasks already running finish on their own.
func (p *AntsPool) Release() {
	p.pool.Release()
}
