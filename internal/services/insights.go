package services

import (
	"context"
	"encoding/json"
	"time"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
)

// Side-effect handlers are keyed by event type and run after the primary
// write has committed. A handler failure is logged and swallowed: it must
// never roll back or fail the triggering write.

type sideEffectHandler func(ctx context.Context, s *EventStore, event *types.HealthEvent) error

var sideEffectHandlers = map[string]sideEffectHandler{
	types.EventTypeMood:       moodSideEffect,
	types.EventTypeAssessment: assessmentSideEffect,
	types.EventTypeMedication: medicationSideEffect,
}

func (s *EventStore) runSideEffects(ctx context.Context, event *types.HealthEvent) {
	handler, ok := sideEffectHandlers[event.EventType]
	if !ok {
		return
	}
	if err := handler(ctx, s, event); err != nil {
		s.log.Warn("Event side effect failed",
			"event_id", event.ID,
			"event_type", event.EventType,
			"user_id", event.UserID,
			"error", err,
		)
	}
}

// Moods at the distressed end of the scale, or a high reported anxiety
// level, trigger a support insight.
var distressMoods = map[string]struct{}{
	"overwhelmed": {},
	"sad":         {},
	"stressed":    {},
}

const highAnxietyThreshold = 8

func moodSideEffect(ctx context.Context, s *EventStore, event *types.HealthEvent) error {
	var payload types.MoodPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	_, distressed := distressMoods[payload.Mood]
	highAnxiety := payload.AnxietyLevel != nil && *payload.AnxietyLevel >= highAnxietyThreshold
	if !distressed && !highAnxiety {
		return nil
	}

	expiresAt := s.now().Add(7 * 24 * time.Hour)
	trigger, err := marshalPayload(map[string]any{
		"event_id":      event.ID,
		"mood":          payload.Mood,
		"anxiety_level": payload.AnxietyLevel,
	})
	if err != nil {
		return err
	}

	_, err = s.insights.Create(ctx, nil, &types.Insight{
		UserID:      event.UserID,
		TriggerType: types.InsightTriggerMoodSupport,
		TriggerData: trigger,
		Title:       "Checking in on you",
		Body:        "Rough days happen. A short grounding exercise can help when things feel heavy.",
		Priority:    2,
		ExpiresAt:   &expiresAt,
	})
	return err
}

func assessmentSideEffect(ctx context.Context, s *EventStore, event *types.HealthEvent) error {
	var payload types.AssessmentPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	severity, _ := payload.Scores["severity"].(string)
	if severity != "moderate" && severity != "severe" {
		return nil
	}

	priority := 2
	if severity == "severe" {
		priority = 3
	}
	expiresAt := s.now().Add(14 * 24 * time.Hour)
	trigger, err := marshalPayload(map[string]any{
		"event_id":      event.ID,
		"assessment_id": payload.AssessmentID,
		"severity":      severity,
	})
	if err != nil {
		return err
	}

	_, err = s.insights.Create(ctx, nil, &types.Insight{
		UserID:      event.UserID,
		TriggerType: types.InsightTriggerAssessmentFollowup,
		TriggerData: trigger,
		Title:       "Extra support is available",
		Body:        "Your recent answers suggest this has been a hard stretch. Consider reaching out to your care team.",
		Priority:    priority,
		ExpiresAt:   &expiresAt,
	})
	return err
}

func medicationSideEffect(ctx context.Context, s *EventStore, event *types.HealthEvent) error {
	var payload types.MedicationPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}
	if payload.Status != types.MedicationStatusMissed {
		return nil
	}

	expiresAt := s.now().Add(3 * 24 * time.Hour)
	trigger, err := marshalPayload(map[string]any{
		"event_id":     event.ID,
		"missed_doses": payload.MissedDoses,
	})
	if err != nil {
		return err
	}

	_, err = s.insights.Create(ctx, nil, &types.Insight{
		UserID:      event.UserID,
		TriggerType: types.InsightTriggerMissedMedication,
		TriggerData: trigger,
		Title:       "Missed dose recorded",
		Body:        "If you are unsure what to do about a missed dose, your clinic can advise on timing.",
		Priority:    1,
		ExpiresAt:   &expiresAt,
	})
	return err
}
