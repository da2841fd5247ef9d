package models

import "time"

// Role is an administrator-defined named bundle of permissions.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPermission reports whether the role's permission set contains an exact
// (module, action) match. Stored values are compared case-sensitively.
func (r *Role) HasPermission(module, action string) bool {
	for _, p := range r.Permissions {
		if p.Matches(module, action) {
			return true
		}
	}
	return false
}
