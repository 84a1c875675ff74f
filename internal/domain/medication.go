package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Medication struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Name     string `gorm:"not null;column:name" json:"name"`
	Dosage   string `gorm:"column:dosage" json:"dosage"`
	Schedule string `gorm:"column:schedule" json:"schedule"`
	Active   bool   `gorm:"not null;default:true;column:active" json:"active"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Medication) TableName() string { return "medication" }

// MedicationLog is one adherence record per recorded dose.
type MedicationLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_medication_log_user_taken" json:"user_id"`
	MedicationID uuid.UUID `gorm:"type:uuid;not null;index" json:"medication_id"`

	Status  string    `gorm:"not null;column:status" json:"status"`
	TakenAt time.Time `gorm:"not null;index:idx_medication_log_user_taken" json:"taken_at"`
	Notes   string    `gorm:"column:notes" json:"notes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MedicationLog) TableName() string { return "medication_log" }
