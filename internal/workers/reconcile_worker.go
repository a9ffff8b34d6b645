package workers

import (
	"context"
	"time"

	"kaziflow_backend/internal/logger"
	"kaziflow_backend/internal/repositories"
)

// ReconcileWorker periodically retries bids parked in the fallback shadow
// store after a primary-store permission rejection.
type ReconcileWorker struct {
	fallback *repositories.FallbackBidRepository
	interval time.Duration
}

func NewReconcileWorker(fallback *repositories.FallbackBidRepository, interval time.Duration) *ReconcileWorker {
	return &ReconcileWorker{fallback: fallback, interval: interval}
}

func (w *ReconcileWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ReconcileWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("bid reconcile worker stopped")
			return
		case <-ticker.C:
			flushed, err := w.fallback.Reconcile()
			if err != nil {
				logger.Warn("bid shadow reconcile pass failed", logger.Err(err))
			}
			if remaining := w.fallback.Pending(); flushed > 0 || remaining > 0 {
				logger.Info("bid shadow reconcile pass",
					"flushed", flushed, "remaining", remaining)
			}
		}
	}
}
