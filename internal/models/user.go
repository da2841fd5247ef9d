package models

import "time"

// CoarseRole is the legacy fixed role attached directly to a user account
// and embedded in issued tokens. It predates the Role/Permission system and
// both are honoured during authorization, with the coarse role taking
// precedence so existing accounts keep working.
type CoarseRole string

const (
	RoleAdmin       CoarseRole = "ADMIN"
	RoleResponsible CoarseRole = "RESPONSIBLE"
	RoleTrainer     CoarseRole = "TRAINER"
)

// Valid reports whether the value is one of the known coarse roles.
func (r CoarseRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleResponsible, RoleTrainer:
		return true
	}
	return false
}

// User is a system account that can authenticate and call the API.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FullName string `gorm:"size:200;not null" json:"full_name"`
	Email    string `gorm:"size:200;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`

	// Role is the legacy coarse role. Accounts migrated to the fine-grained
	// system leave it empty and rely on the linked Responsible's Role.
	Role CoarseRole `gorm:"size:20;index" json:"role"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// ResponsibleID links the account to the responsible-party record that
	// carries the fine-grained Role assignment.
	ResponsibleID *uint        `gorm:"index" json:"responsible_id"`
	Responsible   *Responsible `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
