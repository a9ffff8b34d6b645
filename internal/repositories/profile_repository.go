package repositories

import (
	"errors"
	"time"

	"kaziflow_backend/internal/models"

	"gorm.io/gorm"
)

type ProfileRepository interface {
	// Profile operations
	FindByID(id string) (*models.Profile, error)
	FindByEmail(email string) (*models.Profile, error)
	Create(profile *models.Profile) error
	Activate(userID string) error
	UpdateTier(userID string, tier models.SubscriptionTier) error
	CreditWallet(userID string, amountCents int64) error

	// Admin grants
	HasAdminGrant(email string) (bool, error)
	SeedAdminGrants(emails []string) error

	// RefreshToken operations
	CreateRefreshToken(token *models.RefreshToken) error
	FindRefreshToken(token string) (*models.RefreshToken, error)
	DeleteRefreshToken(token string) error
	DeleteUserRefreshTokens(userID string) error
}

type ProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

// Profile operations

func (r *ProfileRepositoryImpl) FindByID(id string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, ErrProfileNotFound)
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) FindByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.First(&profile, "email = ?", email).Error
	if err != nil {
		return nil, classify(err, ErrProfileNotFound)
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) Create(profile *models.Profile) error {
	err := r.db.Create(profile).Error
	if err != nil {
		err = classify(err, ErrProfileNotFound)
		if errors.Is(err, errDuplicateKey) {
			return ErrProfileExists
		}
	}
	return err
}

// Activate flips is_active exactly once. A second confirmation is a no-op,
// not an error.
func (r *ProfileRepositoryImpl) Activate(userID string) error {
	result := r.db.Model(&models.Profile{}).
		Where("id = ? AND is_active = ?", userID, false).
		Updates(map[string]interface{}{
			"is_active":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return classify(result.Error, ErrProfileNotFound)
	}
	if result.RowsAffected == 0 {
		// Profile missing or already active: distinguish for the caller.
		var count int64
		if err := r.db.Model(&models.Profile{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return classify(err, ErrProfileNotFound)
		}
		if count == 0 {
			return ErrProfileNotFound
		}
	}
	return nil
}

func (r *ProfileRepositoryImpl) UpdateTier(userID string, tier models.SubscriptionTier) error {
	result := r.db.Model(&models.Profile{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"tier":       tier,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return classify(result.Error, ErrProfileNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) CreditWallet(userID string, amountCents int64) error {
	result := r.db.Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"wallet_balance_cents": gorm.Expr("wallet_balance_cents + ?", amountCents),
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return classify(result.Error, ErrProfileNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Admin grants

func (r *ProfileRepositoryImpl) HasAdminGrant(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.AdminGrant{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, classify(err, ErrProfileNotFound)
	}
	return count > 0, nil
}

func (r *ProfileRepositoryImpl) SeedAdminGrants(emails []string) error {
	for _, email := range emails {
		var existing models.AdminGrant
		err := r.db.Where("email = ?", email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return classify(err, ErrProfileNotFound)
		}
		if err := r.db.Create(&models.AdminGrant{Email: email}).Error; err != nil {
			return classify(err, ErrProfileNotFound)
		}
	}
	return nil
}

// RefreshToken operations

func (r *ProfileRepositoryImpl) CreateRefreshToken(token *models.RefreshToken) error {
	return classify(r.db.Create(token).Error, ErrTokenNotFound)
}

func (r *ProfileRepositoryImpl) FindRefreshToken(token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	err := r.db.Where("token = ?", token).First(&refreshToken).Error
	if err != nil {
		return nil, classify(err, ErrTokenNotFound)
	}
	return &refreshToken, nil
}

func (r *ProfileRepositoryImpl) DeleteRefreshToken(token string) error {
	result := r.db.Where("token = ?", token).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return classify(result.Error, ErrTokenNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) DeleteUserRefreshTokens(userID string) error {
	return classify(r.db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error, ErrTokenNotFound)
}
