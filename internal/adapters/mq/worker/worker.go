// Package worker defines the runner contract for asynchronous race
// settlement.
//
// A single runner consumes the race queue, so races settle one at a
// time in submission order and the ledger never sees two settlements
// racing each other.
package worker

import (
	"context"
	"fmt"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// Request abstracts what the runner reads off the queue.
type Request = model.RaceRequest

// Executor runs and settles one race.
type Executor interface {
	Execute(ctx context.Context, req Request) error
}

// Queue defines how the runner receives race requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Request
}

// Runner processes queued races using the provided Executor.
type Runner interface {
	// Run starts the runner loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown gracefully stops the runner.
	Shutdown(ctx context.Context) error
}

// RaceRunner implements Runner as a single consumer.
type RaceRunner struct {
	queue    Queue
	executor Executor
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewRaceRunner creates a new runner with configuration options.
func NewRaceRunner(queue Queue, executor Executor, opts ...Option) *RaceRunner {
	r := &RaceRunner{
		queue:    queue,
		executor: executor,
		name:     "race-runner",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logger.Get().Named(r.name)
	}

	return r
}

// Run starts the runner loop.
func (r *RaceRunner) Run(ctx context.Context) {
	defer close(r.done)

	requests := r.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			if err := r.executor.Execute(ctx, req); err != nil {
				metrics.RecordErrorByComponent("runner", "execute_error")
				r.logger.Error(ctx, "race execution failed",
					logger.String("raceID", req.RaceID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the runner.
func (r *RaceRunner) Shutdown(ctx context.Context) error {
	close(r.shutdown)

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
