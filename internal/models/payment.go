package models

import "time"

// Payment records a trainer or education expense.
type Payment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Amount      float64    `gorm:"not null" json:"amount"`
	PaidAt      *time.Time `json:"paid_at"`
	Description string     `gorm:"type:text" json:"description"`

	EducationID *uint      `gorm:"index" json:"education_id"`
	Education   *Education `gorm:"foreignKey:EducationID" json:"education,omitempty"`

	TrainerID *uint    `gorm:"index" json:"trainer_id"`
	Trainer   *Trainer `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`

	StatusID *uint   `gorm:"index" json:"status_id"`
	Status   *Status `gorm:"foreignKey:StatusID" json:"status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
