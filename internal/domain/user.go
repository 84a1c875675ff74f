package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UserStatusActive      = "active"
	UserStatusDeactivated = "deactivated"

	// MedicationNotTracked is the sentinel stored for users who have not
	// opted into medication tracking. Legacy call sites rely on this value
	// being present instead of NULL.
	MedicationNotTracked = "not tracked"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Nickname string    `gorm:"column:nickname" json:"nickname"`

	// Soft status; users are never hard-deleted.
	Status string `gorm:"not null;default:active;column:status" json:"status"`

	CycleStage  string `gorm:"column:cycle_stage" json:"cycle_stage"`
	PrimaryNeed string `gorm:"column:primary_need" json:"primary_need"`
	TopConcern  string `gorm:"column:top_concern" json:"top_concern"`

	ConfidenceMeds    int `gorm:"not null;default:5;column:confidence_meds" json:"confidence_meds"`
	ConfidenceCosts   int `gorm:"not null;default:5;column:confidence_costs" json:"confidence_costs"`
	ConfidenceOverall int `gorm:"not null;default:5;column:confidence_overall" json:"confidence_overall"`

	MedicationStatus string `gorm:"not null;default:'not tracked';column:medication_status" json:"medication_status"`

	EmailOptIn bool `gorm:"not null;default:true;column:email_opt_in" json:"email_opt_in"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "app_user" }

// ApplyLegacyDefaults fills sentinel values expected by older call sites so
// they never have to null-check profile fields.
func (u *User) ApplyLegacyDefaults() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	if u.MedicationStatus == "" {
		u.MedicationStatus = MedicationNotTracked
	}
}
