package models

import (
	"time"

	"gorm.io/datatypes"
)

// Transaction is an append-only ledger entry. Never mutated or deleted.
type Transaction struct {
	ID          string            `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      string            `gorm:"type:uuid;not null;index"`
	Type        TransactionType   `gorm:"type:varchar(30);not null"`
	AmountCents int64             `gorm:"not null"`
	Reference   string            `gorm:"type:varchar(64)"` // external gateway reference
	Status      TransactionStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Payload     datatypes.JSON    `gorm:"type:jsonb"` // raw gateway callback body
	CreatedAt   time.Time         `gorm:"default:now()"`
}
