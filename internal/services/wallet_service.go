package services

import (
	"errors"

	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/services/dto"
	"kaziflow_backend/pkg/apperrors"
)

// WalletService exposes a writer's earnings balance and ledger history.
type WalletService struct {
	profileRepo repositories.ProfileRepository
	txnRepo     repositories.TransactionRepository
}

func NewWalletService(profileRepo repositories.ProfileRepository, txnRepo repositories.TransactionRepository) *WalletService {
	return &WalletService{profileRepo: profileRepo, txnRepo: txnRepo}
}

func (s *WalletService) GetWallet(userID string) (*dto.WalletResponse, error) {
	profile, err := s.profileRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	txns, err := s.txnRepo.ListByUser(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		responses = append(responses, dto.NewTransactionResponse(&txns[i]))
	}

	return &dto.WalletResponse{
		BalanceCents: profile.WalletBalanceCents,
		Transactions: responses,
	}, nil
}
