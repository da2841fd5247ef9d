package models

import "time"

// ErrorLog captures an unhandled failure: the endpoint it surfaced on, the
// error's type and message, and a stack trace when one was available.
type ErrorLog struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID *uint `gorm:"index" json:"user_id"`

	Endpoint      string `gorm:"size:500;index" json:"endpoint"`
	ExceptionType string `gorm:"size:255;index" json:"exception_type"`
	Message       string `gorm:"size:2000" json:"message"`
	Stacktrace    string `gorm:"size:10000" json:"stacktrace,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
