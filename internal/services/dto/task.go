package dto

import (
	"time"

	"kaziflow_backend/internal/models"
)

type CreateTaskRequest struct {
	Title         string `json:"title" validate:"required,min=3,max=200"`
	Category      string `json:"category" validate:"required"`
	Description   string `json:"description" validate:"required"`
	PriceCents    int64  `json:"price_cents" validate:"required,gt=0"`
	DurationHours int    `json:"duration_hours" validate:"required,gt=0"`
}

type AssignTaskRequest struct {
	WriterID string `json:"writer_id" validate:"required,uuid"`
}

type SubmitTaskRequest struct {
	Notes string `json:"notes" validate:"required"`
}

type TaskResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Category        string            `json:"category"`
	Description     string            `json:"description"`
	PriceCents      int64             `json:"price_cents"`
	Status          models.TaskStatus `json:"status"`
	AssignedTo      *string           `json:"assigned_to,omitempty"`
	Deadline        time.Time         `json:"deadline"`
	CreatedAt       time.Time         `json:"created_at"`
	SubmissionURL   *string           `json:"submission_url,omitempty"`
	SubmissionNotes *string           `json:"submission_notes,omitempty"`

	// BidCount and HasBid are filled for the browse view from the
	// aggregate and the caller's own bid set, never by per-task queries.
	BidCount int64 `json:"bid_count"`
	HasBid   bool  `json:"has_bid"`
}

func NewTaskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		Title:           t.Title,
		Category:        t.Category,
		Description:     t.Description,
		PriceCents:      t.PriceCents,
		Status:          t.Status,
		AssignedTo:      t.AssignedTo,
		Deadline:        t.Deadline,
		CreatedAt:       t.CreatedAt,
		SubmissionURL:   t.SubmissionURL,
		SubmissionNotes: t.SubmissionNotes,
	}
}
