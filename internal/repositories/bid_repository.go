package repositories

import (
	"errors"

	"kaziflow_backend/internal/models"

	"gorm.io/gorm"
)

type BidRepository interface {
	// Create inserts a bid; the unique (task_id, user_id) index backs the
	// application-level duplicate check, so two concurrent bids cannot
	// both land.
	Create(bid *models.Bid) error
	FindByID(id string) (*models.Bid, error)
	ExistsByTaskAndUser(taskID, userID string) (bool, error)
	ListByTask(taskID string) ([]models.Bid, error)
	ListByUser(userID string) ([]models.Bid, error)

	// CountByTask aggregates bid counts for all tasks in one query.
	CountByTask() (map[string]int64, error)

	// MarkAssignment flips the winning bid to accepted and every sibling
	// bid on the task to rejected, atomically.
	MarkAssignment(taskID, winnerUserID string) error
}

type BidRepositoryImpl struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &BidRepositoryImpl{db: db}
}

func (r *BidRepositoryImpl) Create(bid *models.Bid) error {
	err := classify(r.db.Create(bid).Error, ErrBidNotFound)
	if errors.Is(err, errDuplicateKey) {
		return ErrDuplicateBid
	}
	return err
}

func (r *BidRepositoryImpl) FindByID(id string) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.First(&bid, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, ErrBidNotFound)
	}
	return &bid, nil
}

func (r *BidRepositoryImpl) ExistsByTaskAndUser(taskID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Bid{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&count).Error
	if err != nil {
		return false, classify(err, ErrBidNotFound)
	}
	return count > 0, nil
}

func (r *BidRepositoryImpl) ListByTask(taskID string) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.Where("task_id = ?", taskID).
		Order("created_at ASC").Find(&bids).Error
	return bids, classify(err, ErrBidNotFound)
}

func (r *BidRepositoryImpl) ListByUser(userID string) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").Find(&bids).Error
	return bids, classify(err, ErrBidNotFound)
}

func (r *BidRepositoryImpl) CountByTask() (map[string]int64, error) {
	type taskCount struct {
		TaskID string
		Count  int64
	}

	var rows []taskCount
	err := r.db.Model(&models.Bid{}).
		Select("task_id, COUNT(*) as count").
		Group("task_id").
		Find(&rows).Error
	if err != nil {
		return nil, classify(err, ErrBidNotFound)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.TaskID] = row.Count
	}
	return counts, nil
}

func (r *BidRepositoryImpl) MarkAssignment(taskID, winnerUserID string) error {
	return classify(r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Bid{}).
			Where("task_id = ? AND user_id = ?", taskID, winnerUserID).
			Updates(map[string]interface{}{
				"status": models.BidStatusAccepted,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Bid{}).
			Where("task_id = ? AND user_id != ? AND status = ?", taskID, winnerUserID, models.BidStatusPending).
			Updates(map[string]interface{}{
				"status": models.BidStatusRejected,
			}).Error
	}), ErrBidNotFound)
}
