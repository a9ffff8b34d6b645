package dto

import "kaziflow_backend/internal/models"

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Profile      ProfileResponse `json:"profile"`
}

type ProfileResponse struct {
	ID                 string                  `json:"id"`
	Email              string                  `json:"email"`
	PhoneNumber        string                  `json:"phone_number,omitempty"`
	Role               models.UserRole         `json:"role"`
	Tier               models.SubscriptionTier `json:"tier"`
	IsActive           bool                    `json:"is_active"`
	WalletBalanceCents int64                   `json:"wallet_balance_cents"`
}

func NewProfileResponse(p *models.Profile) ProfileResponse {
	return ProfileResponse{
		ID:                 p.ID,
		Email:              p.Email,
		PhoneNumber:        p.PhoneNumber,
		Role:               p.Role,
		Tier:               p.Tier,
		IsActive:           p.IsActive,
		WalletBalanceCents: p.WalletBalanceCents,
	}
}
