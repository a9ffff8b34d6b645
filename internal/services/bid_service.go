package services

import (
	"context"
	"errors"
	"time"

	"kaziflow_backend/internal/cache"
	"kaziflow_backend/internal/logger"
	"kaziflow_backend/internal/models"
	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/services/dto"
	"kaziflow_backend/pkg/apperrors"
)

const (
	bidCountsCacheKey = "bid_counts"
	bidCountsCacheTTL = 15 * time.Second
)

// BidService owns bid placement and the per-task bid aggregates shown on
// the board. Placement rejections that a writer can fix (duplicate bid,
// closed task) come back as a result payload, not an error; errors are
// reserved for authorization and infrastructure failures.
type BidService struct {
	bidRepo     repositories.BidRepository
	taskRepo    repositories.TaskRepository
	profileRepo repositories.ProfileRepository
	cache       *cache.Cache
}

func NewBidService(
	bidRepo repositories.BidRepository,
	taskRepo repositories.TaskRepository,
	profileRepo repositories.ProfileRepository,
	cacheInstance *cache.Cache,
) *BidService {
	return &BidService{
		bidRepo:     bidRepo,
		taskRepo:    taskRepo,
		profileRepo: profileRepo,
		cache:       cacheInstance,
	}
}

// PlaceBid records a writer's offer on an open task. The activation gate
// is re-checked here regardless of what any client claims; one bid per
// writer per task is enforced both by a pre-check and by the store's
// unique constraint, so a racing duplicate still comes back as a clean
// rejection.
func (s *BidService) PlaceBid(ctx context.Context, taskID, userID string, req *dto.PlaceBidRequest) (*dto.PlaceBidResult, error) {
	bidder, err := s.profileRepo.FindByID(userID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	if !bidder.CanClaimWork() {
		return nil, apperrors.ErrActivationRequired
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	if task.Status != models.TaskStatusOpen {
		return &dto.PlaceBidResult{
			Success: false,
			Message: "This task is no longer accepting bids",
		}, nil
	}

	exists, err := s.bidRepo.ExistsByTaskAndUser(taskID, userID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	if exists {
		return &dto.PlaceBidResult{
			Success: false,
			Message: "You have already placed a bid on this task",
		}, nil
	}

	amount := req.AmountCents
	if amount <= 0 {
		amount = task.PriceCents
	}

	bid := &models.Bid{
		TaskID:      taskID,
		UserID:      userID,
		Proposal:    req.Proposal,
		AmountCents: amount,
		Status:      models.BidStatusPending,
	}

	if err := s.bidRepo.Create(bid); err != nil {
		if errors.Is(err, repositories.ErrDuplicateBid) {
			return &dto.PlaceBidResult{
				Success: false,
				Message: "You have already placed a bid on this task",
			}, nil
		}
		return nil, s.translateStoreError(err)
	}

	s.invalidateBidCounts(ctx)

	return &dto.PlaceBidResult{
		Success: true,
		Message: "Bid placed successfully",
		BidID:   bid.ID,
	}, nil
}

// ListBidsForTask returns all bids on a task, oldest first. Admin only.
func (s *BidService) ListBidsForTask(taskID, requesterID string) ([]models.Bid, error) {
	requester, err := s.profileRepo.FindByID(requesterID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	if requester.Role != models.UserRoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		return nil, s.translateStoreError(err)
	}

	bids, err := s.bidRepo.ListByTask(taskID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	return bids, nil
}

// MyBidSet returns the set of task IDs the writer has bid on, so the
// board can mark them without one query per task.
func (s *BidService) MyBidSet(userID string) (dto.BidSet, error) {
	bids, err := s.bidRepo.ListByUser(userID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	return dto.NewBidSet(bids), nil
}

// AggregateBidCounts returns bid totals per task ID for the open board.
// The aggregate is served from cache for a short window; a cache outage
// falls through to the store.
func (s *BidService) AggregateBidCounts(ctx context.Context) (map[string]int64, error) {
	if s.cache != nil {
		var cached map[string]int64
		if found, err := s.cache.Get(ctx, bidCountsCacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	counts, err := s.bidRepo.CountByTask()
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, bidCountsCacheKey, counts, bidCountsCacheTTL); err != nil {
			logger.Warn("bid count cache write failed", logger.Err(err))
		}
	}
	return counts, nil
}

func (s *BidService) invalidateBidCounts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, bidCountsCacheKey); err != nil {
		logger.Warn("bid count cache invalidation failed", logger.Err(err))
	}
}

func (s *BidService) translateStoreError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTaskNotFound),
		errors.Is(err, repositories.ErrProfileNotFound),
		errors.Is(err, repositories.ErrBidNotFound):
		return apperrors.ErrNotFound(err)
	case errors.Is(err, repositories.ErrPermissionDenied):
		return apperrors.ErrPermissionDenied(err, "bid", "Store rejected the operation: check access policy")
	case errors.Is(err, repositories.ErrStoreUnavailable):
		return apperrors.ErrTransientIO(err, "bid")
	default:
		return apperrors.InternalError(err)
	}
}
