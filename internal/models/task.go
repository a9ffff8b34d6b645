package models

import "time"

type Task struct {
	BaseModel
	Title       string     `gorm:"not null"`
	Category    string     `gorm:"type:varchar(50);not null"`
	Description string     `gorm:"type:text"`
	PriceCents  int64      `gorm:"not null"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	AssignedTo  *string    `gorm:"type:uuid;index"`
	Deadline    time.Time  `gorm:"not null"`

	// Populated once work is submitted.
	SubmissionURL   *string `gorm:"type:text"`
	SubmissionNotes *string `gorm:"type:text"`
}

// IsAssignee reports whether the given profile is the current assignee.
func (t *Task) IsAssignee(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}
