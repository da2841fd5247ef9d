package models

import "time"

// Trainer delivers educations.
type Trainer struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FullName  string `gorm:"size:200;not null" json:"full_name"`
	Email     string `gorm:"size:200;index" json:"email"`
	Phone     string `gorm:"size:30" json:"phone"`
	Expertise string `gorm:"size:200" json:"expertise"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
