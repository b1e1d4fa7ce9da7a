package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Task is one recurring scan with its own interval. Tasks are isolated:
// a failing or panicking task never blocks the others.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives each task on its own ticker until the context is done.
type Runner struct {
	tasks  []Task
	logger zerolog.Logger
}

func NewRunner(logger zerolog.Logger, tasks ...Task) *Runner {
	return &Runner{
		tasks:  tasks,
		logger: logger.With().Str("component", "jobs").Logger(),
	}
}

// Start launches one goroutine per task and returns immediately.
func (r *Runner) Start(ctx context.Context) {
	for _, task := range r.tasks {
		go r.loop(ctx, task)
	}
}

func (r *Runner) loop(ctx context.Context, task Task) {
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	r.logger.Info().Str("task", task.Name).Dur("interval", task.Interval).Msg("task started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Str("task", task.Name).Msg("task stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx, task)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Str("task", task.Name).Any("panic", rec).Msg("task panicked")
		}
	}()

	if err := task.Run(ctx); err != nil {
		r.logger.Error().Err(err).Str("task", task.Name).Msg("task run failed")
	}
}
