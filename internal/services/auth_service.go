package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"kaziflow_backend/internal/auth"
	"kaziflow_backend/internal/logger"
	"kaziflow_backend/internal/models"
	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/services/dto"
	"kaziflow_backend/pkg/apperrors"
)

const refreshTokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	profileRepo repositories.ProfileRepository
}

func NewAuthService(profileRepo repositories.ProfileRepository) *AuthService {
	return &AuthService{profileRepo: profileRepo}
}

// Register creates a profile. The role comes from the admin-grant table,
// never from the request body. New writers start inactive on the basic tier.
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.profileRepo.FindByEmail(email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	role := models.UserRoleWriter
	granted, err := s.profileRepo.HasAdminGrant(email)
	if err != nil {
		logger.Warn("admin grant lookup failed, registering as writer", "email", email, logger.Err(err))
	} else if granted {
		role = models.UserRoleAdmin
	}

	profile := &models.Profile{
		Email:        email,
		PasswordHash: hash,
		PhoneNumber:  req.PhoneNumber,
		Role:         role,
		Tier:         models.TierBasic,
		IsActive:     false,
	}

	if err := s.profileRepo.Create(profile); err != nil {
		if errors.Is(err, repositories.ErrProfileExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, s.translateStoreError(err)
	}

	return s.issueTokens(profile)
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	profile, err := s.profileRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, s.translateStoreError(err)
	}

	if !auth.CheckPasswordHash(req.Password, profile.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(profile)
}

// Refresh rotates the refresh token and issues a fresh access token.
func (s *AuthService) Refresh(refreshToken string) (*dto.LoginResponse, error) {
	stored, err := s.profileRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.profileRepo.DeleteRefreshToken(refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	profile, err := s.profileRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}

	if err := s.profileRepo.DeleteRefreshToken(refreshToken); err != nil {
		logger.Warn("stale refresh token cleanup failed", "user_id", stored.UserID, logger.Err(err))
	}

	return s.issueTokens(profile)
}

// Logout revokes all of the user's refresh tokens.
func (s *AuthService) Logout(userID string) error {
	if err := s.profileRepo.DeleteUserRefreshTokens(userID); err != nil {
		return s.translateStoreError(err)
	}
	return nil
}

func (s *AuthService) Me(userID string) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByID(userID)
	if err != nil {
		return nil, s.translateStoreError(err)
	}
	resp := dto.NewProfileResponse(profile)
	return &resp, nil
}

func (s *AuthService) issueTokens(profile *models.Profile) (*dto.LoginResponse, error) {
	accessToken, err := auth.GenerateToken(profile.ID, string(profile.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh := &models.RefreshToken{
		UserID:    profile.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.profileRepo.CreateRefreshToken(refresh); err != nil {
		return nil, s.translateStoreError(err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		Profile:      dto.NewProfileResponse(profile),
	}, nil
}

func (s *AuthService) translateStoreError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrProfileNotFound):
		return apperrors.ErrNotFound(err)
	case errors.Is(err, repositories.ErrStoreUnavailable):
		return apperrors.ErrTransientIO(err, "auth")
	default:
		return apperrors.InternalError(err)
	}
}
