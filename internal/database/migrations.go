package database

import (
	"gorm.io/gorm"

	"github.com/flightdeck-io/flightdeck/internal/models"
	"github.com/flightdeck-io/flightdeck/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Trial{},
		&models.Flight{},
		&models.TelemetryPoint{},
		&models.Incident{},
		&models.ShareLink{},
		&models.FileObject{},
		&models.CacheEntry{},
	)
}

// DefaultAdminPassword is the initial password for the seeded admin account.
// Deployments are expected to rotate it on first login.
const DefaultAdminPassword = "flightdeck"

// SeedData inserts the default administrator account when no users exist.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(DefaultAdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     "admin",
		Email:        "admin@localhost",
		DisplayName:  "Administrator",
		PasswordHash: hash,
		IsActive:     true,
	}
	return db.Where(models.User{Username: admin.Username}).Attrs(admin).FirstOrCreate(&models.User{}).Error
}
