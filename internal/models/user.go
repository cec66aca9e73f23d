package models

// User is an operator account able to log in and join dashboards.
type User struct {
	BaseModel

	Username     string `gorm:"not null;uniqueIndex" json:"username"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"display_name"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
