package services

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"gorm.io/datatypes"

	"kaziflow_backend/internal/config"
	"kaziflow_backend/internal/email"
	"kaziflow_backend/internal/logger"
	"kaziflow_backend/internal/models"
	"kaziflow_backend/internal/payment"
	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/services/dto"
	"kaziflow_backend/pkg/apperrors"
)

type paymentPurpose string

const (
	purposeActivation paymentPurpose = "activation"
	purposeUpgrade    paymentPurpose = "upgrade"
)

type paymentIntent struct {
	purpose paymentPurpose
	tier    models.SubscriptionTier
}

// PaymentService drives account activation and tier upgrades through the
// mobile-money gateway. Initiation is synchronous acknowledgement only;
// settlement arrives later through HandleGatewayCallback, which is wired
// as the gateway's sink. Pending intents are keyed by user because the
// gateway reference is only known at callback time.
type PaymentService struct {
	profileRepo repositories.ProfileRepository
	txnRepo     repositories.TransactionRepository
	gateway     payment.Gateway
	email       email.Provider
	cfg         *config.Config

	mu      sync.Mutex
	intents map[string]paymentIntent
}

func NewPaymentService(
	profileRepo repositories.ProfileRepository,
	txnRepo repositories.TransactionRepository,
	gateway payment.Gateway,
	emailProvider email.Provider,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		profileRepo: profileRepo,
		txnRepo:     txnRepo,
		gateway:     gateway,
		email:       emailProvider,
		cfg:         cfg,
		intents:     make(map[string]paymentIntent),
	}
}

// InitiateActivation pushes the one-time activation fee to the writer's
// phone. Already-active accounts are rejected before touching the gateway.
func (s *PaymentService) InitiateActivation(ctx context.Context, userID string, req *dto.InitiateActivationRequest) (*dto.InitiateActivationResponse, error) {
	profile, err := s.profileRepo.FindByID(userID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	if profile.IsActive {
		return nil, apperrors.ErrInvalidOperation("payment", "Account is already active")
	}

	result, err := s.gateway.Initiate(ctx, userID, req.PhoneNumber, s.cfg.Payment.ActivationFeeCents)
	if err != nil {
		return nil, apperrors.ErrTransientIO(err, "payment")
	}
	if !result.Accepted {
		return &dto.InitiateActivationResponse{Accepted: false, Message: result.Reason}, nil
	}

	s.setIntent(userID, paymentIntent{purpose: purposeActivation})

	return &dto.InitiateActivationResponse{
		Accepted: true,
		Message:  "Payment request sent. Confirm on your phone to activate your account.",
	}, nil
}

// InitiateTierUpgrade pushes a subscription charge for the requested tier.
// Only active accounts may upgrade.
func (s *PaymentService) InitiateTierUpgrade(ctx context.Context, userID string, req *dto.UpgradeTierRequest, phoneNumber string) (*dto.InitiateActivationResponse, error) {
	profile, err := s.profileRepo.FindByID(userID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	if !profile.IsActive {
		return nil, apperrors.ErrActivationRequired
	}

	tier := models.SubscriptionTier(req.Tier)
	amount, ok := s.tierPrice(tier)
	if !ok {
		return nil, apperrors.ValidationError(map[string]string{"tier": "Unknown tier"})
	}

	result, err := s.gateway.Initiate(ctx, userID, phoneNumber, amount)
	if err != nil {
		return nil, apperrors.ErrTransientIO(err, "payment")
	}
	if !result.Accepted {
		return &dto.InitiateActivationResponse{Accepted: false, Message: result.Reason}, nil
	}

	s.setIntent(userID, paymentIntent{purpose: purposeUpgrade, tier: tier})

	return &dto.InitiateActivationResponse{
		Accepted: true,
		Message:  "Payment request sent. Confirm on your phone to upgrade.",
	}, nil
}

// HandleProviderWebhook authenticates a settlement webhook before
// processing it. Only provider-originated HTTP callbacks carry a
// signature; the in-process gateway sink delivers settlements directly
// through HandleGatewayCallback and never passes here.
func (s *PaymentService) HandleProviderWebhook(ctx context.Context, cb payment.Callback) error {
	secret := s.cfg.Payment.CallbackSecret
	if secret == "" {
		return apperrors.New(apperrors.CodePermissionDenied, "payment",
			"Webhook endpoint is not configured", http.StatusForbidden)
	}
	if !payment.VerifyCallback(secret, cb) {
		return apperrors.New(apperrors.CodeUnauthorized, "payment",
			"Invalid callback signature", http.StatusUnauthorized)
	}
	return s.HandleGatewayCallback(ctx, cb)
}

// HandleGatewayCallback consumes a settlement notification. Every callback
// is ledgered, success or failure; a successful activation flips the
// account exactly once, so a replayed callback is a no-op at the store.
func (s *PaymentService) HandleGatewayCallback(ctx context.Context, cb payment.Callback) error {
	intent := s.takeIntent(cb.UserID)

	txn := &models.Transaction{
		UserID:      cb.UserID,
		Type:        models.TransactionActivationFee,
		AmountCents: cb.AmountCents,
		Reference:   cb.Reference,
		Status:      models.TransactionStatusFailed,
		Payload:     datatypes.JSON(cb.RawPayload),
	}
	if intent.purpose == purposeUpgrade {
		txn.Type = models.TransactionSubscription
	}
	if cb.Status == "complete" {
		txn.Status = models.TransactionStatusComplete
	}

	if err := s.txnRepo.Create(txn); err != nil {
		logger.Warn("gateway callback ledger write failed",
			"user_id", cb.UserID, "reference", cb.Reference, logger.Err(err))
	}

	if cb.Status != "complete" {
		logger.Info("gateway payment failed", "user_id", cb.UserID, "reference", cb.Reference)
		return nil
	}

	switch intent.purpose {
	case purposeUpgrade:
		if err := s.profileRepo.UpdateTier(cb.UserID, intent.tier); err != nil {
			return s.translateStoreError(err)
		}
	default:
		if err := s.profileRepo.Activate(cb.UserID); err != nil {
			return s.translateStoreError(err)
		}
	}

	go s.sendReceipt(cb)

	return nil
}

func (s *PaymentService) tierPrice(tier models.SubscriptionTier) (int64, bool) {
	switch tier {
	case models.TierPro:
		return s.cfg.Payment.TierProCents, true
	case models.TierElite:
		return s.cfg.Payment.TierEliteCents, true
	default:
		return 0, false
	}
}

func (s *PaymentService) setIntent(userID string, intent paymentIntent) {
	s.mu.Lock()
	s.intents[userID] = intent
	s.mu.Unlock()
}

func (s *PaymentService) takeIntent(userID string) paymentIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent := s.intents[userID]
	delete(s.intents, userID)
	return intent
}

func (s *PaymentService) sendReceipt(cb payment.Callback) {
	profile, err := s.profileRepo.FindByID(cb.UserID)
	if err != nil {
		return
	}
	if err := s.email.SendActivationReceipt(profile.Email, cb.Reference, cb.AmountCents); err != nil {
		logger.Warn("receipt email failed", "user_id", cb.UserID, logger.Err(err))
	}
}

func (s *PaymentService) translateStoreError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrProfileNotFound):
		return apperrors.ErrNotFound(err)
	case errors.Is(err, repositories.ErrStoreUnavailable):
		return apperrors.ErrTransientIO(err, "payment")
	default:
		return apperrors.InternalError(err)
	}
}
