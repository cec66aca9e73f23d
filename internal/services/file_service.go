package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/flightdeck-io/flightdeck/internal/models"
)

var (
	// ErrFileNotFound indicates the requested file descriptor does not exist.
	ErrFileNotFound = errors.New("file service: file not found")
)

// FileService tracks the artefact descriptors attached to a trial. Content
// storage is external; only metadata lives here.
type FileService struct {
	db *gorm.DB
}

// NewFileService constructs a file service once a database handle is supplied.
func NewFileService(db *gorm.DB) (*FileService, error) {
	if db == nil {
		return nil, errors.New("file service: db is required")
	}
	return &FileService{db: db}, nil
}

// RegisterFileInput captures the descriptor of an uploaded artefact.
type RegisterFileInput struct {
	TrialID     string
	Name        string
	ContentType string
	SizeBytes   int64
	URL         string
	UploadedBy  string
}

// Register records a new artefact descriptor under a trial.
func (s *FileService) Register(ctx context.Context, input RegisterFileInput) (*models.FileObject, error) {
	ctx = ensuredContext(ctx)

	trialID := strings.TrimSpace(input.TrialID)
	name := strings.TrimSpace(input.Name)
	url := strings.TrimSpace(input.URL)
	if trialID == "" || name == "" || url == "" {
		return nil, errors.New("file service: trial id, name and url are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Trial{}).Where("id = ?", trialID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrTrialNotFound
	}

	file := models.FileObject{
		TrialID:     trialID,
		Name:        name,
		ContentType: strings.TrimSpace(input.ContentType),
		SizeBytes:   input.SizeBytes,
		URL:         url,
		UploadedBy:  strings.TrimSpace(input.UploadedBy),
	}
	if err := s.db.WithContext(ctx).Create(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// ListByTrial returns the artefacts of one trial ordered by name.
func (s *FileService) ListByTrial(ctx context.Context, trialID string) ([]models.FileObject, error) {
	ctx = ensuredContext(ctx)

	var files []models.FileObject
	err := s.db.WithContext(ctx).
		Where("trial_id = ?", strings.TrimSpace(trialID)).
		Order("LOWER(name)").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Delete removes an artefact descriptor by id.
func (s *FileService) Delete(ctx context.Context, id string) error {
	ctx = ensuredContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.FileObject{}, "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFileNotFound
	}
	return nil
}
