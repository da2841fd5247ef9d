package models

import "time"

// PerformanceLog records a slow service call. Only calls exceeding the
// sampling threshold are persisted, which bounds storage growth from
// high-frequency fast operations.
type PerformanceLog struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Label      string `gorm:"size:200;not null;index" json:"label"`
	DurationMs int64  `gorm:"not null" json:"duration_ms"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
