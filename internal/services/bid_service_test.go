package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaziflow_backend/internal/models"
	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/services/dto"
	"kaziflow_backend/pkg/apperrors"
)

type bidServiceEnv struct {
	svc      *BidService
	profiles *fakeProfileRepo
	tasks    *fakeTaskRepo
	bids     *fakeBidRepo

	admin  *models.Profile
	writer *models.Profile
	task   *models.Task
}

func newBidServiceEnv() *bidServiceEnv {
	profiles := newFakeProfileRepo()
	tasks := newFakeTaskRepo()
	bids := newFakeBidRepo()

	admin := profiles.add(&models.Profile{Email: "admin@example.com", Role: models.UserRoleAdmin})
	writer := profiles.add(&models.Profile{Email: "writer@example.com", Role: models.UserRoleWriter, IsActive: true})
	task := tasks.add(&models.Task{
		Title:      "Proofread thesis chapter",
		Category:   "Academic Writing",
		PriceCents: 120000,
		Status:     models.TaskStatusOpen,
		Deadline:   time.Now().Add(24 * time.Hour),
	})

	return &bidServiceEnv{
		svc:      NewBidService(bids, tasks, profiles, nil),
		profiles: profiles,
		tasks:    tasks,
		bids:     bids,
		admin:    admin,
		writer:   writer,
		task:     task,
	}
}

func TestPlaceBid(t *testing.T) {
	env := newBidServiceEnv()

	result, err := env.svc.PlaceBid(context.Background(), env.task.ID, env.writer.ID,
		&dto.PlaceBidRequest{Proposal: "Ten years of proofreading experience."})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.BidID)

	bid, err := env.bids.FindByID(result.BidID)
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusPending, bid.Status)
	// Task price is the default offer when no amount is given.
	assert.Equal(t, env.task.PriceCents, bid.AmountCents)
}

func TestPlaceBid_DuplicateRejected(t *testing.T) {
	env := newBidServiceEnv()

	first, err := env.svc.PlaceBid(context.Background(), env.task.ID, env.writer.ID,
		&dto.PlaceBidRequest{Proposal: "I will deliver early."})
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := env.svc.PlaceBid(context.Background(), env.task.ID, env.writer.ID,
		&dto.PlaceBidRequest{Proposal: "Bidding once more."})
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Contains(t, second.Message, "already placed")

	bids, err := env.bids.ListByTask(env.task.ID)
	require.NoError(t, err)
	assert.Len(t, bids, 1)
}

func TestPlaceBid_RacingDuplicateHitsConstraint(t *testing.T) {
	env := newBidServiceEnv()

	// The pre-check passes but the store's unique index fires, as it would
	// when two requests race past the existence check.
	env.bids.createErr = repositories.ErrDuplicateBid

	result, err := env.svc.PlaceBid(context.Background(), env.task.ID, env.writer.ID,
		&dto.PlaceBidRequest{Proposal: "Racing with myself."})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "already placed")
}

func TestPlaceBid_InactiveWriterBlocked(t *testing.T) {
	env := newBidServiceEnv()
	inactive := env.profiles.add(&models.Profile{Email: "new@example.com", Role: models.UserRoleWriter})

	_, err := env.svc.PlaceBid(context.Background(), env.task.ID, inactive.ID,
		&dto.PlaceBidRequest{Proposal: "Please let me in."})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))
}

func TestPlaceBid_ClosedTask(t *testing.T) {
	env := newBidServiceEnv()
	require.NoError(t, env.tasks.UpdateStatusFrom(env.task.ID, models.TaskStatusOpen, models.TaskStatusAssigned))

	result, err := env.svc.PlaceBid(context.Background(), env.task.ID, env.writer.ID,
		&dto.PlaceBidRequest{Proposal: "Am I too late here?"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "no longer accepting")
}

func TestAggregateBidCounts(t *testing.T) {
	env := newBidServiceEnv()
	other := env.tasks.add(&models.Task{Title: "Another", Status: models.TaskStatusOpen})

	for i, writer := range []string{"w1", "w2", "w3"} {
		env.profiles.add(&models.Profile{Email: writer + "@example.com", Role: models.UserRoleWriter, IsActive: true})
		taskID := env.task.ID
		if i == 2 {
			taskID = other.ID
		}
		require.NoError(t, env.bids.Create(&models.Bid{TaskID: taskID, UserID: writer, Proposal: "A solid proposal.", Status: models.BidStatusPending}))
	}

	counts, err := env.svc.AggregateBidCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[env.task.ID])
	assert.Equal(t, int64(1), counts[other.ID])
}

func TestMyBidSet(t *testing.T) {
	env := newBidServiceEnv()
	require.NoError(t, env.bids.Create(&models.Bid{TaskID: env.task.ID, UserID: env.writer.ID, Proposal: "My only bid here.", Status: models.BidStatusPending}))

	set, err := env.svc.MyBidSet(env.writer.ID)
	require.NoError(t, err)
	assert.True(t, set.Has(env.task.ID))
	assert.False(t, set.Has("some-other-task"))
}

func TestListBidsForTask_AdminOnly(t *testing.T) {
	env := newBidServiceEnv()

	_, err := env.svc.ListBidsForTask(env.task.ID, env.writer.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))

	_, err = env.svc.ListBidsForTask(env.task.ID, env.admin.ID)
	require.NoError(t, err)
}
