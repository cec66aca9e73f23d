package models

import "gorm.io/datatypes"

// FileObject describes an uploaded artefact attached to a trial:
// documents, photos, and videos shown by the file manager. Only the
// descriptor is stored here; content lives in external storage and
// rendering is out of scope for the session layer.
type FileObject struct {
	BaseModel

	TrialID     string         `gorm:"type:uuid;index;not null" json:"trial_id"`
	Name        string         `gorm:"not null" json:"name"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	URL         string         `gorm:"not null" json:"url"`
	UploadedBy  string         `gorm:"type:uuid" json:"uploaded_by"`
	Tags        datatypes.JSON `json:"tags,omitempty"`
}
