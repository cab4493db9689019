package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/jonathan/reel-lens/internal/tasks"
)

// ErrQueueFull is returned when every worker is busy. No job is created;
// the caller should retry later.
var ErrQueueFull = errors.New("all workers busy")

// Runner accepts submissions and executes extraction runs on a bounded
// worker pool, so a burst of submissions cannot fork an unbounded number
// of ffmpeg/model calls.
type Runner struct {
	pipeline *Pipeline
	pool     *ants.Pool
	logger   *slog.Logger

	baseCtx context.Context
}

// NewRunner creates a runner backed by a non-blocking pool of size workers.
func NewRunner(ctx context.Context, p *Pipeline, workers int, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Runner{
		pipeline: p,
		pool:     pool,
		logger:   logger.With("component", "runner"),
		baseCtx:  ctx,
	}, nil
}

// Submit validates the source, reserves a worker, then registers the job.
// The slot is reserved before the job exists so pool saturation surfaces as
// ErrQueueFull without leaving a phantom task behind.
func (r *Runner) Submit(source string) (uuid.UUID, error) {
	if err := tasks.ValidateSource(source); err != nil {
		return uuid.Nil, err
	}

	idCh := make(chan uuid.UUID, 1)
	err := r.pool.Submit(func() {
		taskID := <-idCh
		if taskID == uuid.Nil {
			return
		}
		r.pipeline.Run(r.baseCtx, taskID, source)
	})
	if err != nil {
		r.logger.Warn("worker pool saturated", "error", err)
		return uuid.Nil, ErrQueueFull
	}

	taskID, err := r.pipeline.registry.Submit(source)
	if err != nil {
		idCh <- uuid.Nil
		return uuid.Nil, err
	}
	idCh <- taskID
	return taskID, nil
}

// Registry exposes the job registry for status reads.
func (r *Runner) Registry() *tasks.Registry {
	return r.pipeline.registry
}

// Close drains the pool. In-flight runs finish; queued closures are dropped.
func (r *Runner) Close() {
	r.pool.Release()
}
