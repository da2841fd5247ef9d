package models

import "time"

// Education is a tracked training programme.
type Education struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:200;not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	CategoryID *uint     `gorm:"index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	StatusID *uint   `gorm:"index" json:"status_id"`
	Status   *Status `gorm:"foreignKey:StatusID" json:"status,omitempty"`

	ProjectID *uint    `gorm:"index" json:"project_id"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	TrainerID *uint    `gorm:"index" json:"trainer_id"`
	Trainer   *Trainer `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`

	ResponsibleID *uint        `gorm:"index" json:"responsible_id"`
	Responsible   *Responsible `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
