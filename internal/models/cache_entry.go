package models

import "time"

// CacheEntry represents a value held by the database-backed key-value
// store: cached telemetry responses server-side, chat history in the
// headless viewer's local database.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
