package models

// Trial groups the flights flown for one test campaign.
type Trial struct {
	BaseModel

	Name        string   `gorm:"not null;index" json:"name"`
	Description string   `json:"description"`
	CreatedBy   string   `gorm:"type:uuid" json:"created_by"`
	Flights     []Flight `gorm:"foreignKey:TrialID" json:"flights,omitempty"`
}
