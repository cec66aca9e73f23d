package models

import "time"

// Flight kinds as recorded by the test organisation.
const (
	FlightKindAcceptance   = "acceptance"
	FlightKindExperimental = "experimental"
	FlightKindResource     = "resource"
	FlightKindOperational  = "operational"
)

// Flight is a single recorded flight within a trial.
type Flight struct {
	BaseModel

	TrialID string    `gorm:"type:uuid;index" json:"trial_id"`
	Date    time.Time `gorm:"index" json:"date"`
	Pilot   string    `gorm:"not null" json:"pilot"`
	Kind    string    `gorm:"not null;default:experimental" json:"kind"`
	Status  string    `json:"status"`

	Telemetry []TelemetryPoint `gorm:"foreignKey:FlightID" json:"-"`
}

// TelemetryPoint is one recorded sample of the flight data stream.
type TelemetryPoint struct {
	ID       uint    `gorm:"primaryKey" json:"-"`
	FlightID string  `gorm:"type:uuid;index:idx_flight_time" json:"-"`
	Time     float64 `gorm:"index:idx_flight_time" json:"Time"`

	Alt   float64 `json:"alt"`
	Speed float64 `json:"speed"`

	Gx float64 `json:"gx"`
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	AngRateX float64 `json:"angratex"`
	AngRateY float64 `json:"angratey"`
	AngRateZ float64 `json:"angratez"`

	Lat float64 `json:"lat"`
	Lon float64 `json:"long"`
}
