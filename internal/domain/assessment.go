package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssessmentDefinition is a versioned questionnaire. completeAssessment
// always loads the latest active version for a name.
type AssessmentDefinition struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string    `gorm:"not null;index;column:name" json:"name"`
	Version int       `gorm:"not null;default:1;column:version" json:"version"`
	Active  bool      `gorm:"not null;default:true;column:active" json:"active"`

	Questions datatypes.JSON `gorm:"column:questions" json:"questions,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AssessmentDefinition) TableName() string { return "assessment_definition" }

type AssessmentResponse struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	EventID      uuid.UUID `gorm:"type:uuid;column:event_id" json:"event_id"`

	Responses datatypes.JSON `gorm:"column:responses" json:"responses"`
	Scores    datatypes.JSON `gorm:"column:scores" json:"scores"`

	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (AssessmentResponse) TableName() string { return "assessment_response" }
