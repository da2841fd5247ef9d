package models

import "time"

// ActivityLog is an append-only record of an authorization or business
// mutation event. Rows are never updated; the creation timestamp is assigned
// by the server at write time.
type ActivityLog struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID *uint `gorm:"index" json:"user_id"`

	Action     string `gorm:"size:100;not null;index" json:"action"`
	EntityType string `gorm:"size:100;index" json:"entity_type"`
	EntityID   *uint  `gorm:"index" json:"entity_id"`

	Description string `gorm:"size:1000" json:"description"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
