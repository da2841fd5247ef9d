package models

import "time"

// Responsible is a responsible-party record (programme owner). A user
// account may link to one, and the record optionally carries a fine-grained
// Role assignment used by the authorization engine.
type Responsible struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	FullName   string `gorm:"size:200;not null" json:"full_name"`
	Email      string `gorm:"size:200;index" json:"email"`
	Phone      string `gorm:"size:30" json:"phone"`
	Department string `gorm:"size:200" json:"department"`

	RoleID *uint `gorm:"index" json:"role_id"`
	Role   *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
