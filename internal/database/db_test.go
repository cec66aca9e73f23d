package database

import (
	"testing"

	"gorm.io/gorm"

	"github.com/flightdeck-io/flightdeck/internal/models"
	"github.com/flightdeck-io/flightdeck/pkg/crypto"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	migrator := db.Migrator()
	tables := []interface{}{
		&models.User{},
		&models.Trial{},
		&models.Flight{},
		&models.TelemetryPoint{},
		&models.ShareLink{},
		&models.FileObject{},
		&models.CacheEntry{},
	}
	for _, table := range tables {
		if !migrator.HasTable(table) {
			t.Fatalf("expected table for %T to exist", table)
		}
	}
}

func TestSeedDataCreatesAdmin(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("auto migrate and seed failed: %v", err)
	}

	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if !admin.IsActive {
		t.Fatalf("expected seeded admin to be active")
	}
	if !crypto.VerifyPassword(admin.PasswordHash, DefaultAdminPassword) {
		t.Fatal("admin password hash mismatch")
	}
}

func TestSeedDataSkipsWhenUsersExist(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	existing := models.User{Username: "operator", Email: "ops@example.com", PasswordHash: "x", IsActive: true}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := SeedData(db); err != nil {
		t.Fatalf("seed data: %v", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected seed to be skipped, got %d users", count)
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
