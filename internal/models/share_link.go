package models

import (
	"time"

	"gorm.io/datatypes"
)

// ShareLink grants read access to one trial dashboard via an opaque
// token embedded in a URL.
type ShareLink struct {
	BaseModel

	TrialID   string         `gorm:"type:uuid;index;not null" json:"trial_id"`
	Token     string         `gorm:"uniqueIndex;not null" json:"token"`
	CreatedBy string         `gorm:"type:uuid" json:"created_by"`
	ExpiresAt time.Time      `gorm:"index" json:"expires_at"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
}

// Expired reports whether the link is past its expiry.
func (s *ShareLink) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
