package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/flightdeck-io/flightdeck/internal/models"
)

var (
	// ErrIncidentNotFound indicates the requested incident does not exist.
	ErrIncidentNotFound = errors.New("incident service: incident not found")
)

// IncidentService records and serves the anomalies logged against flights.
type IncidentService struct {
	db *gorm.DB
}

// NewIncidentService constructs an incident service once a database handle is supplied.
func NewIncidentService(db *gorm.DB) (*IncidentService, error) {
	if db == nil {
		return nil, errors.New("incident service: db is required")
	}
	return &IncidentService{db: db}, nil
}

// ReportIncidentInput captures a new incident entry.
type ReportIncidentInput struct {
	FlightID    string
	Date        time.Time
	Description string
	Resolution  string
}

// Report records an incident against a flight.
func (s *IncidentService) Report(ctx context.Context, input ReportIncidentInput) (*models.Incident, error) {
	ctx = ensuredContext(ctx)

	flightID := strings.TrimSpace(input.FlightID)
	description := strings.TrimSpace(input.Description)
	if flightID == "" || description == "" {
		return nil, errors.New("incident service: flight id and description are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Flight{}).Where("id = ?", flightID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrFlightNotFound
	}

	incident := models.Incident{
		FlightID:    flightID,
		Date:        input.Date,
		Description: description,
		Resolution:  strings.TrimSpace(input.Resolution),
	}
	if err := s.db.WithContext(ctx).Create(&incident).Error; err != nil {
		return nil, err
	}
	return &incident, nil
}

// Get loads a single incident by id.
func (s *IncidentService) Get(ctx context.Context, id string) (*models.Incident, error) {
	ctx = ensuredContext(ctx)

	var incident models.Incident
	err := s.db.WithContext(ctx).First(&incident, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIncidentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

// ListByFlight returns the incidents of one flight ordered by date.
func (s *IncidentService) ListByFlight(ctx context.Context, flightID string) ([]models.Incident, error) {
	ctx = ensuredContext(ctx)

	var incidents []models.Incident
	err := s.db.WithContext(ctx).
		Where("flight_id = ?", strings.TrimSpace(flightID)).
		Order("date").
		Find(&incidents).Error
	if err != nil {
		return nil, err
	}
	return incidents, nil
}
