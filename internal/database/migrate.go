package database

import (
	"gorm.io/gorm"

	"kaziflow_backend/internal/models"
)

// AutoMigrate creates or updates the schema for all models. The uuid
// extension is needed for the uuid_generate_v4 column defaults.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.Profile{},
		&models.RefreshToken{},
		&models.AdminGrant{},
		&models.Task{},
		&models.Bid{},
		&models.Transaction{},
	)
}
