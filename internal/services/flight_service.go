package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/flightdeck-io/flightdeck/internal/cache"
	"github.com/flightdeck-io/flightdeck/internal/models"
)

var (
	// ErrFlightNotFound indicates the requested flight does not exist.
	ErrFlightNotFound = errors.New("flight service: flight not found")
)

// telemetryCacheTTL bounds how long a decimated telemetry slice is served
// from cache before it is recomputed from the database.
const telemetryCacheTTL = 5 * time.Minute

// FlightService manages flights and their recorded telemetry streams.
type FlightService struct {
	db    *gorm.DB
	store cache.Store
}

// NewFlightService constructs a flight service. The cache store is optional;
// without one every telemetry query hits the database.
func NewFlightService(db *gorm.DB, store cache.Store) (*FlightService, error) {
	if db == nil {
		return nil, errors.New("flight service: db is required")
	}
	return &FlightService{db: db, store: store}, nil
}

// CreateFlightInput captures required fields when registering a flight.
type CreateFlightInput struct {
	TrialID string
	Date    time.Time
	Pilot   string
	Kind    string
	Status  string
}

// Create registers a new flight under a trial.
func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*models.Flight, error) {
	ctx = ensuredContext(ctx)

	trialID := strings.TrimSpace(input.TrialID)
	pilot := strings.TrimSpace(input.Pilot)
	if trialID == "" || pilot == "" {
		return nil, errors.New("flight service: trial id and pilot are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Trial{}).Where("id = ?", trialID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrTrialNotFound
	}

	kind := strings.TrimSpace(input.Kind)
	if kind == "" {
		kind = models.FlightKindExperimental
	}

	flight := models.Flight{
		TrialID: trialID,
		Date:    input.Date,
		Pilot:   pilot,
		Kind:    kind,
		Status:  strings.TrimSpace(input.Status),
	}
	if err := s.db.WithContext(ctx).Create(&flight).Error; err != nil {
		return nil, err
	}
	return &flight, nil
}

// Get loads a single flight by id.
func (s *FlightService) Get(ctx context.Context, id string) (*models.Flight, error) {
	ctx = ensuredContext(ctx)

	var flight models.Flight
	err := s.db.WithContext(ctx).First(&flight, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

// UpdateFlightInput describes mutable flight fields. A nil pointer indicates no change.
type UpdateFlightInput struct {
	Date   *time.Time
	Pilot  *string
	Kind   *string
	Status *string
}

// Update applies the supplied changes to an existing flight.
func (s *FlightService) Update(ctx context.Context, id string, input UpdateFlightInput) (*models.Flight, error) {
	ctx = ensuredContext(ctx)

	flight, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Date != nil {
		updates["date"] = *input.Date
	}
	if input.Pilot != nil {
		pilot := strings.TrimSpace(*input.Pilot)
		if pilot == "" {
			return nil, errors.New("flight service: pilot cannot be empty")
		}
		updates["pilot"] = pilot
	}
	if input.Kind != nil {
		kind := strings.TrimSpace(*input.Kind)
		if kind == "" {
			kind = models.FlightKindExperimental
		}
		updates["kind"] = kind
	}
	if input.Status != nil {
		updates["status"] = strings.TrimSpace(*input.Status)
	}

	if len(updates) == 0 {
		return flight, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Flight{}).Where("id = ?", flight.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, flight.ID)
}

// Delete removes a flight together with its telemetry and drops any
// cached slices for it.
func (s *FlightService) Delete(ctx context.Context, id string) error {
	ctx = ensuredContext(ctx)

	flight, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flight_id = ?", flight.ID).Delete(&models.TelemetryPoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("flight_id = ?", flight.ID).Delete(&models.Incident{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Flight{}, "id = ?", flight.ID).Error
	})
	if err != nil {
		return err
	}

	if s.store != nil {
		_ = s.store.Delete(ctx, telemetryCacheKeys(flight.ID)...)
	}
	return nil
}

// ListByTrial returns the flights of one trial ordered by date.
func (s *FlightService) ListByTrial(ctx context.Context, trialID string) ([]models.Flight, error) {
	ctx = ensuredContext(ctx)

	var flights []models.Flight
	err := s.db.WithContext(ctx).
		Where("trial_id = ?", strings.TrimSpace(trialID)).
		Order("date").
		Find(&flights).Error
	if err != nil {
		return nil, err
	}
	return flights, nil
}

// AppendTelemetry stores a batch of telemetry samples for a flight and
// invalidates any cached slices for it.
func (s *FlightService) AppendTelemetry(ctx context.Context, flightID string, points []models.TelemetryPoint) error {
	ctx = ensuredContext(ctx)

	flight, err := s.Get(ctx, flightID)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}

	for i := range points {
		points[i].ID = 0
		points[i].FlightID = flight.ID
	}

	if err := s.db.WithContext(ctx).CreateInBatches(points, 500).Error; err != nil {
		return err
	}

	if s.store != nil {
		// Best effort: a stale cache entry expires on its own TTL.
		_ = s.store.Delete(ctx, telemetryCacheKeys(flight.ID)...)
	}
	return nil
}

// TelemetryQuery bounds a telemetry fetch. Zero values mean unbounded.
type TelemetryQuery struct {
	From      float64
	To        float64
	MaxPoints int
}

// Telemetry returns the flight's samples within the query window, decimated
// to at most MaxPoints by stride sampling. Results are cached per query.
func (s *FlightService) Telemetry(ctx context.Context, flightID string, query TelemetryQuery) ([]models.TelemetryPoint, error) {
	ctx = ensuredContext(ctx)

	flight, err := s.Get(ctx, flightID)
	if err != nil {
		return nil, err
	}

	key := telemetryCacheKey(flight.ID, query)
	if s.store != nil {
		if raw, ok, err := s.store.Get(ctx, key); err == nil && ok {
			var cached []models.TelemetryPoint
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	q := s.db.WithContext(ctx).Where("flight_id = ?", flight.ID)
	if query.From != 0 || query.To != 0 {
		q = q.Where("time >= ? AND time <= ?", query.From, query.To)
	}

	var points []models.TelemetryPoint
	if err := q.Order("time").Find(&points).Error; err != nil {
		return nil, err
	}

	points = decimate(points, query.MaxPoints)

	if s.store != nil {
		if raw, err := json.Marshal(points); err == nil {
			_ = s.store.Set(ctx, key, raw, telemetryCacheTTL)
		}
	}
	return points, nil
}

// decimate thins a sample slice to at most max points while always keeping
// the first and last sample so chart extents stay stable.
func decimate(points []models.TelemetryPoint, max int) []models.TelemetryPoint {
	if max <= 0 || len(points) <= max {
		return points
	}
	if max == 1 {
		return points[:1]
	}

	out := make([]models.TelemetryPoint, 0, max)
	stride := float64(len(points)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		out = append(out, points[int(float64(i)*stride+0.5)])
	}
	out[max-1] = points[len(points)-1]
	return out
}

func telemetryCacheKey(flightID string, query TelemetryQuery) string {
	return fmt.Sprintf("telemetry.%s.%g-%g-%d", flightID, query.From, query.To, query.MaxPoints)
}

// telemetryCacheKeys lists the cache keys to drop when a flight's data
// changes. Only the unbounded key is tracked; windowed entries age out.
func telemetryCacheKeys(flightID string) []string {
	return []string{telemetryCacheKey(flightID, TelemetryQuery{})}
}
