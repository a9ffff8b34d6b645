package workers

import (
	"context"
	"math/rand"
	"time"

	"kaziflow_backend/internal/logger"
)

type taskExpirer interface {
	ExpireOpenPastDeadline() (int64, error)
}

// DeadlineWorker sweeps open tasks whose deadline has passed into the
// expired state so stale postings leave the board. Assigned work is never
// touched.
type DeadlineWorker struct {
	tasks    taskExpirer
	interval time.Duration
}

func NewDeadlineWorker(tasks taskExpirer, interval time.Duration) *DeadlineWorker {
	return &DeadlineWorker{tasks: tasks, interval: interval}
}

func (w *DeadlineWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *DeadlineWorker) run(ctx context.Context) {
	jitter := time.Duration(rand.Int63n(int64(w.interval) / 2))
	select {
	case <-ctx.Done():
		return
	case <-time.After(jitter):
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("deadline worker stopped")
			return
		case <-ticker.C:
			swept, err := w.tasks.ExpireOpenPastDeadline()
			if err != nil {
				logger.Warn("deadline sweep failed", logger.Err(err))
				continue
			}
			if swept > 0 {
				logger.Info("expired stale open tasks", "count", swept)
			}
		}
	}
}
