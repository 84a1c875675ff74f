package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MedicationTakenYes = "yes"
	MedicationTakenNo  = "no"
)

// DailyCheckin is the flat V1 row: exactly one per (user, date), enforced by
// a composite unique index and an upsert on conflict.
type DailyCheckin struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_checkin_user_date;index" json:"user_id"`

	CheckinDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_checkin_user_date;column:checkin_date" json:"date_submitted"`

	MoodToday       string `gorm:"column:mood_today" json:"mood_today"`
	ConfidenceToday int    `gorm:"not null;default:5;column:confidence_today" json:"confidence_today"`

	// "yes", "no" or the not-tracked sentinel.
	MedicationTaken string `gorm:"not null;default:'not tracked';column:medication_taken" json:"medication_taken"`
	MissedDoses     *int   `gorm:"column:missed_doses" json:"missed_doses,omitempty"`

	Symptoms            datatypes.JSON `gorm:"column:symptoms" json:"symptoms,omitempty"`
	PrimaryConcern      string         `gorm:"column:primary_concern" json:"primary_concern"`
	AnxietyLevel        *int           `gorm:"column:anxiety_level" json:"anxiety_level,omitempty"`
	UserNote            string         `gorm:"column:user_note" json:"user_note"`
	InjectionConfidence *int           `gorm:"column:injection_confidence" json:"injection_confidence,omitempty"`
	PartnerInvolved     *bool          `gorm:"column:partner_involved" json:"partner_involved,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (DailyCheckin) TableName() string { return "daily_checkin" }
