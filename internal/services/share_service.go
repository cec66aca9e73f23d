package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/flightdeck-io/flightdeck/internal/models"
)

var (
	// ErrShareNotFound indicates the token does not match any link.
	ErrShareNotFound = errors.New("share service: share link not found")
	// ErrShareExpired indicates the link exists but is past its expiry.
	ErrShareExpired = errors.New("share service: share link expired")
)

// DefaultShareTTL is used when no explicit expiry is requested.
const DefaultShareTTL = 7 * 24 * time.Hour

// ShareService issues and validates the opaque tokens that grant read-only
// access to a trial dashboard.
type ShareService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewShareService constructs a share service once a database handle is supplied.
func NewShareService(db *gorm.DB) (*ShareService, error) {
	if db == nil {
		return nil, errors.New("share service: db is required")
	}
	return &ShareService{db: db, now: time.Now}, nil
}

// IssueShareInput captures the parameters of a new share link.
type IssueShareInput struct {
	TrialID   string
	CreatedBy string
	TTL       time.Duration
}

// Issue creates a share link with a freshly generated token.
func (s *ShareService) Issue(ctx context.Context, input IssueShareInput) (*models.ShareLink, error) {
	ctx = ensuredContext(ctx)

	trialID := strings.TrimSpace(input.TrialID)
	if trialID == "" {
		return nil, errors.New("share service: trial id is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Trial{}).Where("id = ?", trialID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrTrialNotFound
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = DefaultShareTTL
	}

	// Token collisions are vanishingly rare but the unique index makes
	// them a retryable error rather than a correctness issue.
	for attempt := 0; attempt < 3; attempt++ {
		token, err := generateShareToken()
		if err != nil {
			return nil, err
		}

		link := models.ShareLink{
			TrialID:   trialID,
			Token:     token,
			CreatedBy: strings.TrimSpace(input.CreatedBy),
			ExpiresAt: s.now().Add(ttl),
		}
		err = s.db.WithContext(ctx).Create(&link).Error
		if err == nil {
			return &link, nil
		}
		if !isUniqueConstraintError(err) {
			return nil, err
		}
	}
	return nil, errors.New("share service: could not generate a unique token")
}

// Validate resolves a token to its share link, rejecting expired links.
func (s *ShareService) Validate(ctx context.Context, token string) (*models.ShareLink, error) {
	ctx = ensuredContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrShareNotFound
	}

	var link models.ShareLink
	err := s.db.WithContext(ctx).First(&link, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}

	if link.Expired(s.now()) {
		return nil, ErrShareExpired
	}
	return &link, nil
}

// Revoke deletes a share link by id.
func (s *ShareService) Revoke(ctx context.Context, id string) error {
	ctx = ensuredContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.ShareLink{}, "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrShareNotFound
	}
	return nil
}

// PurgeExpired removes links past their expiry and reports how many were dropped.
func (s *ShareService) PurgeExpired(ctx context.Context) (int64, error) {
	ctx = ensuredContext(ctx)

	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.ShareLink{})
	return result.RowsAffected, result.Error
}

func generateShareToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
