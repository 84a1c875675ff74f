package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
)

func mustPayload(t *testing.T, payload any) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return datatypes.JSON(raw)
}

func viewEvent(t *testing.T, userID, correlationID uuid.UUID, eventType string, payload any, occurredAt, createdAt time.Time) *types.HealthEvent {
	t.Helper()
	return &types.HealthEvent{
		ID:            uuid.New(),
		UserID:        userID,
		EventType:     eventType,
		Payload:       mustPayload(t, payload),
		OccurredAt:    occurredAt,
		CorrelationID: correlationID,
		Source:        types.EventSourceCheckin,
		CreatedAt:     createdAt,
	}
}

func TestBuildCompatibilityViewReassemblesRow(t *testing.T) {
	userID := uuid.New()
	correlationID := uuid.New()
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	written := day.Add(9 * time.Hour)

	anxiety := 6
	missed := 2
	events := []*types.HealthEvent{
		viewEvent(t, userID, correlationID, types.EventTypeMood, types.MoodPayload{
			Mood:           "stressed",
			Confidence:     7,
			AnxietyLevel:   &anxiety,
			PrimaryConcern: "side effects",
		}, day, written),
		viewEvent(t, userID, correlationID, types.EventTypeMedication, types.MedicationPayload{
			Status:      types.MedicationStatusMissed,
			MissedDoses: &missed,
		}, day, written),
		viewEvent(t, userID, correlationID, types.EventTypeSymptom, types.SymptomPayload{
			Symptoms:  []string{"headache", "fatigue"},
			RelatedTo: "side effects",
		}, day, written),
		viewEvent(t, userID, correlationID, types.EventTypeNote, map[string]any{
			"note": "rough day",
		}, day, written),
	}

	rows := BuildCompatibilityView(events)
	if len(rows) != 1 {
		t.Fatalf("rows: want=1 got=%d", len(rows))
	}

	row := rows[0]
	if row.UserID != userID {
		t.Fatalf("user id: want=%s got=%s", userID, row.UserID)
	}
	if !row.CheckinDate.Equal(day) {
		t.Fatalf("checkin date: want=%s got=%s", day, row.CheckinDate)
	}
	if row.MoodToday != "stressed" || row.ConfidenceToday != 7 {
		t.Fatalf("mood fields: got mood=%q confidence=%d", row.MoodToday, row.ConfidenceToday)
	}
	if row.AnxietyLevel == nil || *row.AnxietyLevel != 6 {
		t.Fatalf("anxiety level: want=6 got=%v", row.AnxietyLevel)
	}
	if row.MedicationTaken != types.MedicationTakenNo {
		t.Fatalf("medication taken: want=%q got=%q", types.MedicationTakenNo, row.MedicationTaken)
	}
	if row.MissedDoses == nil || *row.MissedDoses != 2 {
		t.Fatalf("missed doses: want=2 got=%v", row.MissedDoses)
	}
	if row.UserNote != "rough day" {
		t.Fatalf("user note: want=%q got=%q", "rough day", row.UserNote)
	}

	var symptoms []string
	if err := json.Unmarshal(row.Symptoms, &symptoms); err != nil {
		t.Fatalf("unmarshal symptoms: %v", err)
	}
	if len(symptoms) != 2 || symptoms[0] != "headache" {
		t.Fatalf("symptoms: got=%v", symptoms)
	}
}

func TestBuildCompatibilityViewDefaultsWithoutMedicationEvent(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)

	rows := BuildCompatibilityView([]*types.HealthEvent{
		viewEvent(t, userID, uuid.New(), types.EventTypeMood, types.MoodPayload{
			Mood:       "hopeful",
			Confidence: 8,
		}, day, day.Add(time.Hour)),
	})
	if len(rows) != 1 {
		t.Fatalf("rows: want=1 got=%d", len(rows))
	}
	if rows[0].MedicationTaken != types.MedicationNotTracked {
		t.Fatalf("medication taken: want=%q got=%q", types.MedicationNotTracked, rows[0].MedicationTaken)
	}
}

func TestBuildCompatibilityViewMostRecentGroupWins(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)

	morning := viewEvent(t, userID, uuid.New(), types.EventTypeMood, types.MoodPayload{
		Mood: "sad", Confidence: 3,
	}, day, day.Add(8*time.Hour))
	evening := viewEvent(t, userID, uuid.New(), types.EventTypeMood, types.MoodPayload{
		Mood: "good", Confidence: 8,
	}, day, day.Add(20*time.Hour))

	rows := BuildCompatibilityView([]*types.HealthEvent{morning, evening})
	if len(rows) != 1 {
		t.Fatalf("rows: want=1 got=%d", len(rows))
	}
	if rows[0].MoodToday != "good" {
		t.Fatalf("mood: want=good got=%q", rows[0].MoodToday)
	}
}

func TestBuildCompatibilityViewTieBreakOnCorrelationID(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC)
	written := day.Add(12 * time.Hour)

	lowID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	highID := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	low := viewEvent(t, userID, lowID, types.EventTypeMood, types.MoodPayload{
		Mood: "neutral", Confidence: 5,
	}, day, written)
	high := viewEvent(t, userID, highID, types.EventTypeMood, types.MoodPayload{
		Mood: "great", Confidence: 9,
	}, day, written)

	for _, events := range [][]*types.HealthEvent{{low, high}, {high, low}} {
		rows := BuildCompatibilityView(events)
		if len(rows) != 1 {
			t.Fatalf("rows: want=1 got=%d", len(rows))
		}
		if rows[0].MoodToday != "great" {
			t.Fatalf("tie-break mood: want=great got=%q", rows[0].MoodToday)
		}
	}
}

func TestBuildCompatibilityViewSeparateDaysBothSurvive(t *testing.T) {
	userID := uuid.New()
	day1 := time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	rows := BuildCompatibilityView([]*types.HealthEvent{
		viewEvent(t, userID, uuid.New(), types.EventTypeMood, types.MoodPayload{Mood: "okay", Confidence: 5}, day1, day1.Add(time.Hour)),
		viewEvent(t, userID, uuid.New(), types.EventTypeMood, types.MoodPayload{Mood: "good", Confidence: 7}, day2, day2.Add(time.Hour)),
	})
	if len(rows) != 2 {
		t.Fatalf("rows: want=2 got=%d", len(rows))
	}
	// Newest first.
	if !rows[0].CheckinDate.Equal(day2) || !rows[1].CheckinDate.Equal(day1) {
		t.Fatalf("order: got=[%s %s]", rows[0].CheckinDate, rows[1].CheckinDate)
	}
}
