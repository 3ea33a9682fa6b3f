// Package dispatch runs derivation work on a worker pool and hands each
// caller exactly one outcome.
package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/TheMichaelB/scryptbridge/internal/events"
	"github.com/TheMichaelB/scryptbridge/internal/models"
)

// Work is the body of a task. A returned error becomes a Failure carrying
// the error text; a string becomes a Success.
type Work func(ctx context.Context) (string, error)

// Dispatcher submits work to a Pool and tracks uncompleted tasks.
type Dispatcher struct {
	pool     Pool
	logger   *events.Logger
	inFlight cmap.ConcurrentMap[string, *Result]
}

// NewDispatcher creates a dispatcher on top of pool.
func NewDispatcher(pool Pool, logger *events.Logger) *Dispatcher {
	return &Dispatcher{
		pool:     pool,
		logger:   logger.WithField("component", "dispatcher"),
		inFlight: cmap.New[*Result](),
	}
}

// Submit queues work and returns immediately. The outcome is delivered
// once through callback (on the worker goroutine) and the returned Result.
// ctx supplies request-scoped values only: cancelling it does not stop the
// task. If the pool refuses the task the Failure is delivered before
// Submit returns.
func (d *Dispatcher) Submit(ctx context.Context, work Work, callback Callback) *Result {
	result := newResult(uuid.NewString(), callback)
	ctx = events.WithRequestID(context.WithoutCancel(ctx), result.id)

	d.inFlight.Set(result.id, result)

	err := d.pool.Submit(func() {
		d.run(ctx, result, work)
	})
	if err != nil {
		d.inFlight.Remove(result.id)
		dispatchErr := models.NewDispatchError(err)
		events.FromContext(ctx).WithError(dispatchErr).Error("Task rejected by worker pool")
		_ = result.complete(models.Failure(dispatchErr.Error()))
	}

	return result
}

// InFlight returns the number of submitted tasks without an outcome.
func (d *Dispatcher) InFlight() int {
	return d.inFlight.Count()
}

// Lookup returns an uncompleted task by ID.
func (d *Dispatcher) Lookup(id string) (*Result, bool) {
	return d.inFlight.Get(id)
}

func (d *Dispatcher) run(ctx context.Context, result *Result, work Work) {
	logger := events.FromContext(ctx)

	if !result.start() {
		logger.Error("Task started twice")
		return
	}

	outcome := d.execute(ctx, work)
	d.inFlight.Remove(result.id)

	defer func() {
		if p := recover(); p != nil {
			logger.WithField("panic", fmt.Sprint(p)).Error("Outcome callback panicked")
		}
	}()

	if err := result.complete(outcome); err != nil {
		logger.WithError(err).Error("Dropped duplicate outcome")
	}
}

// execute runs work, converting a panic into a DerivationError failure.
func (d *Dispatcher) execute(ctx context.Context, work Work) (outcome models.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			err := models.NewDerivationError("task panicked", fmt.Errorf("%v", p))
			events.FromContext(ctx).WithError(err).Error("Recovered task panic")
			outcome = models.Failure(err.Error())
		}
	}()

	hex, err := work(ctx)
	if err != nil {
		return models.Failure(err.Error())
	}
	return models.Success(hex)
}
