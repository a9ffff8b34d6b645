package repositories

import (
	"kaziflow_backend/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	// Create appends a ledger entry. The ledger is append-only: no update
	// or delete operations exist.
	Create(txn *models.Transaction) error
	ListByUser(userID string) ([]models.Transaction, error)
}

type TransactionRepositoryImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

func (r *TransactionRepositoryImpl) Create(txn *models.Transaction) error {
	return classify(r.db.Create(txn).Error, ErrTransactionNotFound)
}

func (r *TransactionRepositoryImpl) ListByUser(userID string) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&txns).Error
	return txns, classify(err, ErrTransactionNotFound)
}
