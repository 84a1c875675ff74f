package services

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
)

// BuildCompatibilityView reconstructs flat V1 rows from correlation groups.
// Exactly one row survives per (user, date): when two groups exist for the
// same day the most recently written one wins, with the correlation id as a
// deterministic tie-break.
func BuildCompatibilityView(events []*types.HealthEvent) []*types.DailyCheckin {
	groups := map[uuid.UUID][]*types.HealthEvent{}
	for _, e := range events {
		groups[e.CorrelationID] = append(groups[e.CorrelationID], e)
	}

	type candidate struct {
		row       *types.DailyCheckin
		writtenAt time.Time
	}
	byDay := map[time.Time]candidate{}

	for correlationID, group := range groups {
		row := reassembleRow(correlationID, group)
		writtenAt := groupWrittenAt(group)
		day := row.CheckinDate

		current, exists := byDay[day]
		if !exists || writtenAt.After(current.writtenAt) ||
			(writtenAt.Equal(current.writtenAt) &&
				strings.Compare(row.ID.String(), current.row.ID.String()) > 0) {
			byDay[day] = candidate{row: row, writtenAt: writtenAt}
		}
	}

	rows := make([]*types.DailyCheckin, 0, len(byDay))
	for _, c := range byDay {
		rows = append(rows, c.row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CheckinDate.After(rows[j].CheckinDate)
	})
	return rows
}

func reassembleRow(correlationID uuid.UUID, group []*types.HealthEvent) *types.DailyCheckin {
	row := &types.DailyCheckin{
		ID:              correlationID,
		MedicationTaken: types.MedicationNotTracked,
		ConfidenceToday: 5,
	}

	for _, e := range group {
		if row.UserID == uuid.Nil {
			row.UserID = e.UserID
		}
		if row.CheckinDate.IsZero() {
			o := e.OccurredAt.UTC()
			row.CheckinDate = time.Date(o.Year(), o.Month(), o.Day(), 0, 0, 0, 0, time.UTC)
		}
		if e.CreatedAt.After(row.CreatedAt) {
			row.CreatedAt = e.CreatedAt
			row.UpdatedAt = e.CreatedAt
		}

		switch e.EventType {
		case types.EventTypeMood:
			var p types.MoodPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				continue
			}
			row.MoodToday = p.Mood
			row.ConfidenceToday = p.Confidence
			row.AnxietyLevel = p.AnxietyLevel
			row.PrimaryConcern = p.PrimaryConcern
			row.InjectionConfidence = p.InjectionConfidence
			row.PartnerInvolved = p.PartnerInvolved
			if row.UserNote == "" && p.Note != "" {
				row.UserNote = p.Note
			}

		case types.EventTypeMedication:
			var p types.MedicationPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				continue
			}
			switch p.Status {
			case types.MedicationStatusTaken:
				row.MedicationTaken = types.MedicationTakenYes
			case types.MedicationStatusMissed:
				row.MedicationTaken = types.MedicationTakenNo
				row.MissedDoses = p.MissedDoses
			}

		case types.EventTypeSymptom:
			var p types.SymptomPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				continue
			}
			if raw, err := json.Marshal(p.Symptoms); err == nil {
				row.Symptoms = datatypes.JSON(raw)
			}

		case types.EventTypeNote:
			var p struct {
				Note string `json:"note"`
			}
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				continue
			}
			if p.Note != "" {
				row.UserNote = p.Note
			}
		}
	}

	return row
}

// groupWrittenAt is when the correlation group was persisted: the latest
// created_at among its events.
func groupWrittenAt(group []*types.HealthEvent) time.Time {
	var latest time.Time
	for _, e := range group {
		if e.CreatedAt.After(latest) {
			latest = e.CreatedAt
		}
	}
	return latest
}
