package models

import "time"

// Incident is an anomaly recorded against a flight, reviewed on the
// incident analysis page alongside the flight's telemetry.
type Incident struct {
	BaseModel

	FlightID    string    `gorm:"type:uuid;index;not null" json:"flight_id"`
	Date        time.Time `gorm:"index" json:"date"`
	Description string    `gorm:"not null" json:"description"`
	Resolution  string    `json:"resolution"`
}
