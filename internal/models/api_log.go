package models

import (
	"time"

	"gorm.io/datatypes"
)

// ApiLog captures one HTTP request/response pair for operational auditing.
type ApiLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserEmail  string `gorm:"size:200;index" json:"user_email"`
	Endpoint   string `gorm:"size:500;index" json:"endpoint"`
	Method     string `gorm:"size:10" json:"method"`
	StatusCode int    `json:"status_code"`

	RequestBody  datatypes.JSON `json:"request_body,omitempty"`
	ResponseBody datatypes.JSON `json:"response_body,omitempty"`

	DurationMs int64  `json:"duration_ms"`
	IPAddress  string `gorm:"size:45" json:"ip_address"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
