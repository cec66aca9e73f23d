package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/flightdeck-io/flightdeck/internal/models"
)

var (
	// ErrTrialNotFound indicates the requested trial does not exist.
	ErrTrialNotFound = errors.New("trial service: trial not found")
)

// TrialService manages CRUD operations for test campaigns.
type TrialService struct {
	db *gorm.DB
}

// NewTrialService constructs a trial service once a database handle is supplied.
func NewTrialService(db *gorm.DB) (*TrialService, error) {
	if db == nil {
		return nil, errors.New("trial service: db is required")
	}
	return &TrialService{db: db}, nil
}

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// CreateTrialInput captures required fields when creating a trial.
type CreateTrialInput struct {
	Name        string
	Description string
	CreatedBy   string
}

// UpdateTrialInput describes mutable trial fields. A nil pointer indicates no change.
type UpdateTrialInput struct {
	Name        *string
	Description *string
}

// Create registers a new trial.
func (s *TrialService) Create(ctx context.Context, input CreateTrialInput) (*models.Trial, error) {
	ctx = ensuredContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("trial service: name is required")
	}

	trial := models.Trial{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   strings.TrimSpace(input.CreatedBy),
	}
	if err := s.db.WithContext(ctx).Create(&trial).Error; err != nil {
		return nil, err
	}
	return &trial, nil
}

// Get loads a trial together with its flights.
func (s *TrialService) Get(ctx context.Context, id string) (*models.Trial, error) {
	ctx = ensuredContext(ctx)

	var trial models.Trial
	err := s.db.WithContext(ctx).
		Preload("Flights", func(db *gorm.DB) *gorm.DB { return db.Order("date") }).
		First(&trial, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTrialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trial, nil
}

// List returns all trials ordered by name.
func (s *TrialService) List(ctx context.Context) ([]models.Trial, error) {
	ctx = ensuredContext(ctx)

	var trials []models.Trial
	if err := s.db.WithContext(ctx).Order("LOWER(name)").Find(&trials).Error; err != nil {
		return nil, err
	}
	return trials, nil
}

// Update applies the supplied changes to an existing trial.
func (s *TrialService) Update(ctx context.Context, id string, input UpdateTrialInput) (*models.Trial, error) {
	ctx = ensuredContext(ctx)

	trial, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New("trial service: name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}

	if len(updates) == 0 {
		return trial, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Trial{}).Where("id = ?", trial.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, trial.ID)
}

// Delete removes a trial and its dependent records.
func (s *TrialService) Delete(ctx context.Context, id string) error {
	ctx = ensuredContext(ctx)

	trial, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flightIDs []string
		if err := tx.Model(&models.Flight{}).Where("trial_id = ?", trial.ID).Pluck("id", &flightIDs).Error; err != nil {
			return err
		}
		if len(flightIDs) > 0 {
			if err := tx.Where("flight_id IN ?", flightIDs).Delete(&models.TelemetryPoint{}).Error; err != nil {
				return err
			}
			if err := tx.Where("flight_id IN ?", flightIDs).Delete(&models.Incident{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("trial_id = ?", trial.ID).Delete(&models.Flight{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trial_id = ?", trial.ID).Delete(&models.ShareLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trial_id = ?", trial.ID).Delete(&models.FileObject{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Trial{}, "id = ?", trial.ID).Error
	})
}
