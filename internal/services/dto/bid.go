package dto

import (
	"time"

	"kaziflow_backend/internal/models"
)

type PlaceBidRequest struct {
	Proposal    string `json:"proposal" validate:"required,min=10"`
	AmountCents int64  `json:"amount_cents" validate:"omitempty,gt=0"`
}

// PlaceBidResult reports expected business-rule outcomes. Transport and
// storage failures travel as errors instead.
type PlaceBidResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	BidID   string `json:"bid_id,omitempty"`
}

type BidResponse struct {
	ID          string           `json:"id"`
	TaskID      string           `json:"task_id"`
	UserID      string           `json:"user_id"`
	Proposal    string           `json:"proposal"`
	AmountCents int64            `json:"amount_cents"`
	Status      models.BidStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

func NewBidResponse(b *models.Bid) BidResponse {
	return BidResponse{
		ID:          b.ID,
		TaskID:      b.TaskID,
		UserID:      b.UserID,
		Proposal:    b.Proposal,
		AmountCents: b.AmountCents,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
	}
}

// BidSet answers HasBid in O(1) from a writer's own bid list.
type BidSet map[string]struct{}

func NewBidSet(bids []models.Bid) BidSet {
	set := make(BidSet, len(bids))
	for i := range bids {
		set[bids[i].TaskID] = struct{}{}
	}
	return set
}

func (s BidSet) Has(taskID string) bool {
	_, ok := s[taskID]
	return ok
}
