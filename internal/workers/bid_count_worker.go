package workers

import (
	"context"
	"math/rand"
	"time"

	"kaziflow_backend/internal/logger"
	"kaziflow_backend/internal/services"
)

// BidCountWorker keeps the board's bid-count aggregate warm so the first
// request after a cache expiry does not pay for the GROUP BY. The tick is
// jittered so multiple instances do not refresh in lockstep.
type BidCountWorker struct {
	bidService *services.BidService
	interval   time.Duration
}

func NewBidCountWorker(bidService *services.BidService, interval time.Duration) *BidCountWorker {
	return &BidCountWorker{bidService: bidService, interval: interval}
}

func (w *BidCountWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *BidCountWorker) run(ctx context.Context) {
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
			logger.Info("bid count worker stopped")
			return
		case <-ticker.C:
			if _, err := w.bidService.AggregateBidCounts(ctx); err != nil {
				logger.Warn("bid count refresh failed", logger.Err(err))
			}
		}
	}
}
