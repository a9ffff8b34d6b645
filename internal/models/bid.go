package models

import "time"

// Bid is a writer's application to a task. The (task_id, user_id) pair is
// unique at the store level so two concurrent bids from the same writer
// cannot both land.
type Bid struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	TaskID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_bids_task_user"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_bids_task_user"`
	Proposal    string    `gorm:"type:text;not null"`
	AmountCents int64     `gorm:"not null;default:0"`
	Status      BidStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt   time.Time `gorm:"default:now()"`
}
