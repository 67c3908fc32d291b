// Package dispatcher fans independent fetch-and-extract tasks out to a
// bounded pool of goroutines.
package dispatcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when no positive worker count is configured.
const DefaultWorkers = 4

// Task is one unit of work. Tasks write their results into state they own.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs tasks with a fixed concurrency limit.
type Dispatcher struct {
	workers int
	logger  *zap.Logger
}

// New creates a Dispatcher.
func New(workers int, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{workers: workers, logger: logger.Named("dispatcher")}
}

// Run executes every task and blocks until all have finished. A failing task
// does not cancel its siblings. The returned slice holds each task's error at
// the task's index. Tasks not yet started when ctx ends are skipped with the
// context error.
func (d *Dispatcher) Run(ctx context.Context, tasks []Task) []error {
	errs := make([]error, len(tasks))
	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, task := range tasks {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("task %s panicked: %v", task.Name, r)
				}
				errs[i] = err
				if err != nil {
					d.logger.Debug("task failed", zap.String("task", task.Name), zap.Error(err))
				}
			}()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("task %s skipped: %w", task.Name, ctxErr)
			}
			return task.Run(ctx)
		})
	}
	_ = g.Wait()
	return errs
}
