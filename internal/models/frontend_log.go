package models

import "time"

// FrontendLog records a user action reported by the web client, such as a
// page view or form submit.
type FrontendLog struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID *uint `gorm:"index" json:"user_id"`

	Action  string `gorm:"size:255;not null;index" json:"action"`
	Page    string `gorm:"size:255;index" json:"page"`
	Details string `gorm:"size:2000" json:"details"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
