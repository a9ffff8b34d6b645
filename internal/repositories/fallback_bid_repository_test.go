package repositories

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaziflow_backend/internal/models"
)

// stubPrimary is an in-memory BidRepository whose Create can be forced to
// fail with a given error, mimicking a primary store under a restrictive
// access policy or a network partition.
type stubPrimary struct {
	mu        sync.Mutex
	bids      map[string]models.Bid
	createErr error
}

func newStubPrimary() *stubPrimary {
	return &stubPrimary{bids: make(map[string]models.Bid)}
}

func (s *stubPrimary) Create(bid *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, b := range s.bids {
		if b.TaskID == bid.TaskID && b.UserID == bid.UserID {
			return ErrDuplicateBid
		}
	}
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	s.bids[bid.ID] = *bid
	return nil
}

func (s *stubPrimary) FindByID(id string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bids[id]
	if !ok {
		return nil, ErrBidNotFound
	}
	return &b, nil
}

func (s *stubPrimary) ExistsByTaskAndUser(taskID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bids {
		if b.TaskID == taskID && b.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubPrimary) ListByTask(taskID string) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bid
	for _, b := range s.bids {
		if b.TaskID == taskID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubPrimary) ListByUser(userID string) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bid
	for _, b := range s.bids {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubPrimary) CountByTask() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range s.bids {
		counts[b.TaskID]++
	}
	return counts, nil
}

func (s *stubPrimary) MarkAssignment(taskID, winnerUserID string) error { return nil }

var _ BidRepository = (*stubPrimary)(nil)

func TestFallback_WriteThroughWhenPrimaryHealthy(t *testing.T) {
	primary := newStubPrimary()
	repo := NewFallbackBidRepository(primary)

	bid := &models.Bid{TaskID: "t1", UserID: "u1", Proposal: "A thorough proposal", Status: models.BidStatusPending}
	require.NoError(t, repo.Create(bid))

	assert.Equal(t, 0, repo.Pending())
	exists, err := repo.ExistsByTaskAndUser("t1", "u1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFallback_ParksOnPermissionDenied(t *testing.T) {
	primary := newStubPrimary()
	primary.createErr = ErrPermissionDenied
	repo := NewFallbackBidRepository(primary)

	bid := &models.Bid{TaskID: "t1", UserID: "u1", Proposal: "A thorough proposal", Status: models.BidStatusPending}
	require.NoError(t, repo.Create(bid))
	assert.Equal(t, 1, repo.Pending())

	// The parked bid is visible through every read path.
	exists, err := repo.ExistsByTaskAndUser("t1", "u1")
	require.NoError(t, err)
	assert.True(t, exists)

	found, err := repo.FindByID(bid.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)

	byTask, err := repo.ListByTask("t1")
	require.NoError(t, err)
	assert.Len(t, byTask, 1)

	counts, err := repo.CountByTask()
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["t1"])
}

func TestFallback_DuplicateAcrossTiers(t *testing.T) {
	primary := newStubPrimary()
	primary.createErr = ErrPermissionDenied
	repo := NewFallbackBidRepository(primary)

	require.NoError(t, repo.Create(&models.Bid{TaskID: "t1", UserID: "u1", Proposal: "First attempt bid"}))

	err := repo.Create(&models.Bid{TaskID: "t1", UserID: "u1", Proposal: "Second attempt bid"})
	require.ErrorIs(t, err, ErrDuplicateBid)
	assert.Equal(t, 1, repo.Pending())
}

func TestFallback_ReconcileFlushes(t *testing.T) {
	primary := newStubPrimary()
	primary.createErr = ErrPermissionDenied
	repo := NewFallbackBidRepository(primary)

	require.NoError(t, repo.Create(&models.Bid{TaskID: "t1", UserID: "u1", Proposal: "Parked bid one"}))
	require.NoError(t, repo.Create(&models.Bid{TaskID: "t2", UserID: "u2", Proposal: "Parked bid two"}))
	require.Equal(t, 2, repo.Pending())

	// Still rejected: everything stays parked.
	flushed, err := repo.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, 0, flushed)
	assert.Equal(t, 2, repo.Pending())

	// Policy fixed: the parked writes land and leave the shadow tier.
	primary.createErr = nil
	flushed, err = repo.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, 2, flushed)
	assert.Equal(t, 0, repo.Pending())

	counts, err := primary.CountByTask()
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["t1"])
	assert.Equal(t, int64(1), counts["t2"])
}

func TestFallback_ReconcileDropsDuplicates(t *testing.T) {
	primary := newStubPrimary()
	repo := NewFallbackBidRepository(primary)

	// A bid that landed in the primary before the outage.
	require.NoError(t, primary.Create(&models.Bid{TaskID: "t1", UserID: "u1", Proposal: "Landed earlier on"}))

	primary.createErr = ErrPermissionDenied
	require.NoError(t, repo.Create(&models.Bid{TaskID: "t1", UserID: "u2", Proposal: "Parked during outage"}))

	// Simulate the same parked write already existing in the primary.
	primary.createErr = nil
	require.NoError(t, primary.Create(&models.Bid{TaskID: "t1", UserID: "u2", Proposal: "Raced in directly"}))

	flushed, err := repo.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, 1, flushed)
	assert.Equal(t, 0, repo.Pending())
}
