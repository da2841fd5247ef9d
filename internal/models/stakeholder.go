package models

import "time"

// Stakeholder is an external party with an interest in a project.
type Stakeholder struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:200;not null" json:"name"`
	Organization string `gorm:"size:200" json:"organization"`
	Email        string `gorm:"size:200" json:"email"`
	Phone        string `gorm:"size:30" json:"phone"`

	ProjectID *uint    `gorm:"index" json:"project_id"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
