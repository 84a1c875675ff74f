package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/healthjournal-backend/internal/data/repos/journal"
	types "github.com/yungbote/healthjournal-backend/internal/domain"
	apperrors "github.com/yungbote/healthjournal-backend/internal/pkg/errors"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

// EventStore appends immutable HealthEvent facts and computes their derived
// side effects. Nothing here ever updates or deletes an event.
type EventStore struct {
	db  *gorm.DB
	log *logger.Logger

	events      journal.HealthEventRepo
	insights    journal.InsightRepo
	medications journal.MedicationRepo
	assessments journal.AssessmentRepo

	now func() time.Time
}

func NewEventStore(
	db *gorm.DB,
	baseLog *logger.Logger,
	events journal.HealthEventRepo,
	insights journal.InsightRepo,
	medications journal.MedicationRepo,
	assessments journal.AssessmentRepo,
) *EventStore {
	return &EventStore{
		db:          db,
		log:         baseLog.With("service", "EventStore"),
		events:      events,
		insights:    insights,
		medications: medications,
		assessments: assessments,
		now:         time.Now,
	}
}

type CreateEventInput struct {
	Type          string
	Subtype       string
	Payload       any
	OccurredAt    *time.Time
	CorrelationID *uuid.UUID
	Source        string
}

// CreateHealthEvent validates the type against the closed enum before any
// write, persists the event, then runs the type-keyed side-effect handler.
// Side-effect failures are logged and never fail the primary write.
func (s *EventStore) CreateHealthEvent(ctx context.Context, userID uuid.UUID, in CreateEventInput) (*types.HealthEvent, error) {
	event, err := s.buildEvent(userID, in)
	if err != nil {
		return nil, err
	}

	if _, err := s.events.Append(ctx, nil, []*types.HealthEvent{event}); err != nil {
		return nil, err
	}

	s.runSideEffects(ctx, event)
	return event, nil
}

func (s *EventStore) buildEvent(userID uuid.UUID, in CreateEventInput) (*types.HealthEvent, error) {
	if !types.IsValidEventType(in.Type) {
		return nil, fmt.Errorf("event type %q: %w", in.Type, apperrors.ErrInvalidArgument)
	}

	payload, err := marshalPayload(in.Payload)
	if err != nil {
		return nil, fmt.Errorf("event payload: %w", err)
	}

	occurredAt := s.now()
	if in.OccurredAt != nil {
		occurredAt = *in.OccurredAt
	}
	correlationID := uuid.New()
	if in.CorrelationID != nil && *in.CorrelationID != uuid.Nil {
		correlationID = *in.CorrelationID
	}
	source := in.Source
	if source == "" {
		source = types.EventSourceManual
	}

	return &types.HealthEvent{
		ID:            uuid.New(),
		UserID:        userID,
		EventType:     in.Type,
		EventSubtype:  in.Subtype,
		Payload:       payload,
		OccurredAt:    occurredAt,
		CorrelationID: correlationID,
		Source:        source,
	}, nil
}

// CheckinFields is the flat V1 submission shape.
type CheckinFields struct {
	Date                time.Time
	MoodToday           string
	ConfidenceToday     int
	MedicationTaken     string
	MissedDoses         *int
	Symptoms            []string
	PrimaryConcern      string
	AnxietyLevel        *int
	UserNote            string
	InjectionConfidence *int
	PartnerInvolved     *bool
}

// CreateDailyCheckin decomposes one submission into up to four events
// (mood, medication, symptom, note, in that order) sharing one correlation
// id. The whole fan-out commits in a single transaction so a partial
// correlation group can never be persisted.
func (s *EventStore) CreateDailyCheckin(ctx context.Context, userID uuid.UUID, fields CheckinFields) ([]*types.HealthEvent, error) {
	events, err := s.decomposeCheckin(userID, fields)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.events.Append(ctx, tx, events)
		return err
	}); err != nil {
		return nil, err
	}

	for _, e := range events {
		s.runSideEffects(ctx, e)
	}
	return events, nil
}

func (s *EventStore) decomposeCheckin(userID uuid.UUID, fields CheckinFields) ([]*types.HealthEvent, error) {
	date := fields.Date
	if date.IsZero() {
		date = s.now()
	}
	occurredAt := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	correlationID := uuid.New()

	var events []*types.HealthEvent
	add := func(eventType, subtype string, payload any) error {
		e, err := s.buildEvent(userID, CreateEventInput{
			Type:          eventType,
			Subtype:       subtype,
			Payload:       payload,
			OccurredAt:    &occurredAt,
			CorrelationID: &correlationID,
			Source:        types.EventSourceCheckin,
		})
		if err != nil {
			return err
		}
		events = append(events, e)
		return nil
	}

	if err := add(types.EventTypeMood, "daily", types.MoodPayload{
		Mood:                fields.MoodToday,
		Confidence:          fields.ConfidenceToday,
		AnxietyLevel:        fields.AnxietyLevel,
		PrimaryConcern:      fields.PrimaryConcern,
		InjectionConfidence: fields.InjectionConfidence,
		PartnerInvolved:     fields.PartnerInvolved,
	}); err != nil {
		return nil, err
	}

	switch fields.MedicationTaken {
	case types.MedicationTakenYes:
		if err := add(types.EventTypeMedication, "daily", types.MedicationPayload{
			Status: types.MedicationStatusTaken,
		}); err != nil {
			return nil, err
		}
	case types.MedicationTakenNo:
		if err := add(types.EventTypeMedication, "daily", types.MedicationPayload{
			Status:      types.MedicationStatusMissed,
			MissedDoses: fields.MissedDoses,
		}); err != nil {
			return nil, err
		}
	}

	if len(fields.Symptoms) > 0 {
		relatedTo := fields.PrimaryConcern
		if relatedTo == "" {
			relatedTo = "daily_checkin"
		}
		if err := add(types.EventTypeSymptom, "daily", types.SymptomPayload{
			Symptoms:  fields.Symptoms,
			RelatedTo: relatedTo,
		}); err != nil {
			return nil, err
		}
	}

	if fields.UserNote != "" {
		if err := add(types.EventTypeNote, "user_note", map[string]any{
			"note": fields.UserNote,
		}); err != nil {
			return nil, err
		}
	}

	return events, nil
}

type TimelineOptions struct {
	StartDate  *time.Time
	EndDate    *time.Time
	EventTypes []string
	Limit      int
}

// GetHealthTimeline returns events newest-first. The date range is inclusive
// on both ends and defaults to the last 30 days.
func (s *EventStore) GetHealthTimeline(ctx context.Context, userID uuid.UUID, opts TimelineOptions) ([]*types.HealthEvent, error) {
	end := s.now()
	if opts.EndDate != nil {
		end = *opts.EndDate
	}
	start := end.AddDate(0, 0, -30)
	if opts.StartDate != nil {
		start = *opts.StartDate
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	for _, t := range opts.EventTypes {
		if !types.IsValidEventType(t) {
			return nil, fmt.Errorf("event type %q: %w", t, apperrors.ErrInvalidArgument)
		}
	}

	return s.events.Timeline(ctx, nil, userID, start, end, opts.EventTypes, limit)
}

type AssessmentResult struct {
	Assessment *types.AssessmentDefinition
	Event      *types.HealthEvent
	Response   *types.AssessmentResponse
	Scores     map[string]any
}

// CompleteAssessment loads the latest active definition for the named
// assessment, scores the responses with the type-keyed scoring function and
// writes one assessment event plus a structured response record.
func (s *EventStore) CompleteAssessment(ctx context.Context, userID uuid.UUID, assessmentType string, responses map[string]int) (*AssessmentResult, error) {
	def, err := s.assessments.LatestActiveByName(ctx, nil, assessmentType)
	if err != nil {
		return nil, fmt.Errorf("assessment %q: %w", assessmentType, err)
	}

	scores, err := ScoreAssessment(def.Name, responses)
	if err != nil {
		return nil, err
	}

	event, err := s.buildEvent(userID, CreateEventInput{
		Type:    types.EventTypeAssessment,
		Subtype: def.Name,
		Payload: types.AssessmentPayload{
			AssessmentID: def.ID,
			Responses:    responses,
			Scores:       scores,
		},
		Source: types.EventSourceAssessment,
	})
	if err != nil {
		return nil, err
	}

	responsesJSON, err := marshalPayload(responses)
	if err != nil {
		return nil, err
	}
	scoresJSON, err := marshalPayload(scores)
	if err != nil {
		return nil, err
	}
	response := &types.AssessmentResponse{
		ID:           uuid.New(),
		UserID:       userID,
		AssessmentID: def.ID,
		EventID:      event.ID,
		Responses:    responsesJSON,
		Scores:       scoresJSON,
		CompletedAt:  s.now(),
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.events.Append(ctx, tx, []*types.HealthEvent{event}); err != nil {
			return err
		}
		_, err := s.assessments.CreateResponse(ctx, tx, response)
		return err
	}); err != nil {
		return nil, err
	}

	s.runSideEffects(ctx, event)

	return &AssessmentResult{
		Assessment: def,
		Event:      event,
		Response:   response,
		Scores:     scores,
	}, nil
}

type MedicationTakenOptions struct {
	TakenAt *time.Time
	Notes   string
	Status  string
}

// RecordMedicationTaken validates medication ownership, then writes one
// medication event plus an adherence record.
func (s *EventStore) RecordMedicationTaken(ctx context.Context, userID, medicationID uuid.UUID, opts MedicationTakenOptions) (*types.HealthEvent, error) {
	med, err := s.medications.GetOwned(ctx, nil, userID, medicationID)
	if err != nil {
		return nil, fmt.Errorf("medication %s: %w", medicationID, err)
	}

	takenAt := s.now()
	if opts.TakenAt != nil {
		takenAt = *opts.TakenAt
	}
	status := opts.Status
	if status == "" {
		status = types.MedicationStatusTaken
	}
	if status != types.MedicationStatusTaken && status != types.MedicationStatusMissed {
		return nil, fmt.Errorf("medication status %q: %w", status, apperrors.ErrInvalidArgument)
	}

	event, err := s.buildEvent(userID, CreateEventInput{
		Type:       types.EventTypeMedication,
		Subtype:    med.Name,
		Payload:    types.MedicationPayload{Status: status},
		OccurredAt: &takenAt,
		Source:     types.EventSourceMedication,
	})
	if err != nil {
		return nil, err
	}

	entry := &types.MedicationLog{
		ID:           uuid.New(),
		UserID:       userID,
		MedicationID: med.ID,
		Status:       status,
		TakenAt:      takenAt,
		Notes:        opts.Notes,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.events.Append(ctx, tx, []*types.HealthEvent{event}); err != nil {
			return err
		}
		_, err := s.medications.AppendLog(ctx, tx, entry)
		return err
	}); err != nil {
		return nil, err
	}

	s.runSideEffects(ctx, event)
	return event, nil
}

func marshalPayload(payload any) (datatypes.JSON, error) {
	if payload == nil {
		return datatypes.JSON([]byte(`{}`)), nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
