package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Insight is a generated recommendation. Created only as a side effect of
// event ingestion, never directly by the user.
type Insight struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	TriggerType string         `gorm:"not null;column:trigger_type" json:"trigger_type"`
	TriggerData datatypes.JSON `gorm:"column:trigger_data" json:"trigger_data,omitempty"`

	Title string `gorm:"column:title" json:"title"`
	Body  string `gorm:"column:body" json:"body"`

	Priority  int        `gorm:"not null;default:0;column:priority" json:"priority"`
	ExpiresAt *time.Time `gorm:"index;column:expires_at" json:"expires_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Insight) TableName() string { return "insight" }

const (
	InsightTriggerMoodSupport        = "mood_support"
	InsightTriggerAssessmentFollowup = "assessment_followup"
	InsightTriggerMissedMedication   = "missed_medication"
)
