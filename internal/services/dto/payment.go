package dto

import (
	"time"

	"kaziflow_backend/internal/models"
)

type InitiateActivationRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10"`
}

type InitiateActivationResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

type UpgradeTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=pro elite"`
}

type TransactionResponse struct {
	ID          string                   `json:"id"`
	Type        models.TransactionType   `json:"type"`
	AmountCents int64                    `json:"amount_cents"`
	Reference   string                   `json:"reference"`
	Status      models.TransactionStatus `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
}

func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Type:        t.Type,
		AmountCents: t.AmountCents,
		Reference:   t.Reference,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
}

type WalletResponse struct {
	BalanceCents int64                 `json:"balance_cents"`
	Transactions []TransactionResponse `json:"transactions"`
}
