package models

import "time"

// Permission is an atomic (module, action) capability. Two permission rows
// with the same pair are interchangeable for authorization purposes: identity
// is defined by Key(), independent of ID and description.
type Permission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Module      string `gorm:"size:100;not null;uniqueIndex:idx_permissions_module_action" json:"module"`
	Action      string `gorm:"size:20;not null;uniqueIndex:idx_permissions_module_action" json:"action"`
	Description string `gorm:"type:text" json:"description"`

	Roles []Role `gorm:"many2many:role_permissions;" json:"roles,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Key returns the canonical identity of the capability.
func (p Permission) Key() string {
	return p.Module + ":" + p.Action
}

// Matches reports an exact, case-sensitive (module, action) match.
func (p Permission) Matches(module, action string) bool {
	return p.Module == module && p.Action == action
}

// Equal compares two permissions by capability, ignoring ID and description.
func (p Permission) Equal(other Permission) bool {
	return p.Key() == other.Key()
}
