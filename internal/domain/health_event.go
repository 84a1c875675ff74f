package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventTypeMood        = "mood"
	EventTypeMedication  = "medication"
	EventTypeSymptom     = "symptom"
	EventTypeAssessment  = "assessment"
	EventTypeVital       = "vital"
	EventTypeTreatment   = "treatment"
	EventTypeAppointment = "appointment"
	EventTypeNote        = "note"
)

var eventTypes = map[string]struct{}{
	EventTypeMood:        {},
	EventTypeMedication:  {},
	EventTypeSymptom:     {},
	EventTypeAssessment:  {},
	EventTypeVital:       {},
	EventTypeTreatment:   {},
	EventTypeAppointment: {},
	EventTypeNote:        {},
}

// IsValidEventType reports whether t belongs to the closed event-type enum.
func IsValidEventType(t string) bool {
	_, ok := eventTypes[t]
	return ok
}

const (
	EventSourceCheckin    = "daily_checkin"
	EventSourceAssessment = "assessment"
	EventSourceMedication = "medication_tracker"
	EventSourceManual     = "manual"
)

// HealthEvent is an immutable, append-only fact. There is no update path;
// corrections are written as new events.
type HealthEvent struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_health_event_user_occurred" json:"user_id"`

	EventType    string `gorm:"not null;index;column:event_type" json:"event_type"`
	EventSubtype string `gorm:"column:event_subtype" json:"event_subtype"`

	Payload datatypes.JSON `gorm:"column:payload" json:"payload"`

	OccurredAt    time.Time `gorm:"not null;index:idx_health_event_user_occurred" json:"occurred_at"`
	CorrelationID uuid.UUID `gorm:"type:uuid;not null;index;column:correlation_id" json:"correlation_id"`
	Source        string    `gorm:"not null;default:manual;column:source" json:"source"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (HealthEvent) TableName() string { return "health_event" }

// MoodPayload is the wire shape of mood event payloads.
type MoodPayload struct {
	Mood                string `json:"mood"`
	Confidence          int    `json:"confidence"`
	AnxietyLevel        *int   `json:"anxiety_level,omitempty"`
	Note                string `json:"note,omitempty"`
	PrimaryConcern      string `json:"primary_concern,omitempty"`
	InjectionConfidence *int   `json:"injection_confidence,omitempty"`
	PartnerInvolved     *bool  `json:"partner_involved,omitempty"`
}

// MedicationPayload is the wire shape of medication event payloads.
// Status is "taken" or "missed".
type MedicationPayload struct {
	Status      string `json:"status"`
	MissedDoses *int   `json:"missed_doses,omitempty"`
}

// SymptomPayload is the wire shape of symptom event payloads.
type SymptomPayload struct {
	Symptoms  []string `json:"symptoms"`
	RelatedTo string   `json:"related_to"`
}

// AssessmentPayload is the wire shape of assessment event payloads.
type AssessmentPayload struct {
	AssessmentID uuid.UUID      `json:"assessment_id"`
	Responses    map[string]int `json:"responses"`
	Scores       map[string]any `json:"scores"`
}

const (
	MedicationStatusTaken  = "taken"
	MedicationStatusMissed = "missed"
)
