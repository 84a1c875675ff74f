package adapter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
	apperrors "github.com/yungbote/healthjournal-backend/internal/pkg/errors"
)

// Record is the remote-record shape {id, fields}. Every backend emulates it
// for the query escape hatch so callers never see a schema difference.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

const (
	TableUsers    = "Users"
	TableCheckins = "DailyCheckins"
	TableInsights = "Insights"
)

// tableSchema is the per-table field whitelist. Projection drops anything
// not listed before it is written to or filtered against a backend.
type tableSchema struct {
	name    string
	allowed map[string]struct{}
}

func newTableSchema(name string, fields ...string) tableSchema {
	allowed := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		allowed[f] = struct{}{}
	}
	return tableSchema{name: name, allowed: allowed}
}

func (s tableSchema) project(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, ok := s.allowed[k]; ok {
			out[k] = v
		}
	}
	return out
}

var tableSchemas = map[string]tableSchema{
	TableUsers: newTableSchema(TableUsers,
		"id", "email", "nickname", "status",
		"cycle_stage", "primary_need", "top_concern",
		"confidence_meds", "confidence_costs", "confidence_overall",
		"medication_status", "email_opt_in",
	),
	TableCheckins: newTableSchema(TableCheckins,
		"id", "user_id", "date_submitted",
		"mood_today", "confidence_today",
		"medication_taken", "missed_doses",
		"symptoms", "primary_concern", "anxiety_level",
		"user_note", "injection_confidence", "partner_involved",
	),
	TableInsights: newTableSchema(TableInsights,
		"id", "user_id", "trigger_type", "trigger_data",
		"title", "body", "priority", "expires_at",
	),
}

func schemaFor(table string) (tableSchema, error) {
	s, ok := tableSchemas[table]
	if !ok {
		return tableSchema{}, fmt.Errorf("table %q: %w", table, apperrors.ErrInvalidArgument)
	}
	return s, nil
}

const dateLayout = "2006-01-02"

// --- field conversion, shared by the remote and record-emulating backends ---

func userToFields(u *types.User) map[string]any {
	return map[string]any{
		"id":                 u.ID.String(),
		"email":              u.Email,
		"nickname":           u.Nickname,
		"status":             u.Status,
		"cycle_stage":        u.CycleStage,
		"primary_need":       u.PrimaryNeed,
		"top_concern":        u.TopConcern,
		"confidence_meds":    u.ConfidenceMeds,
		"confidence_costs":   u.ConfidenceCosts,
		"confidence_overall": u.ConfidenceOverall,
		"medication_status":  u.MedicationStatus,
		"email_opt_in":       u.EmailOptIn,
	}
}

func fieldsToUser(fields map[string]any) *types.User {
	u := &types.User{
		ID:                parseUUID(fields["id"]),
		Email:             asString(fields["email"]),
		Nickname:          asString(fields["nickname"]),
		Status:            asString(fields["status"]),
		CycleStage:        asString(fields["cycle_stage"]),
		PrimaryNeed:       asString(fields["primary_need"]),
		TopConcern:        asString(fields["top_concern"]),
		ConfidenceMeds:    asInt(fields["confidence_meds"], 5),
		ConfidenceCosts:   asInt(fields["confidence_costs"], 5),
		ConfidenceOverall: asInt(fields["confidence_overall"], 5),
		MedicationStatus:  asString(fields["medication_status"]),
		EmailOptIn:        asBool(fields["email_opt_in"], true),
	}
	u.ApplyLegacyDefaults()
	return u
}

func checkinToFields(c *types.DailyCheckin) map[string]any {
	fields := map[string]any{
		"id":               c.ID.String(),
		"user_id":          c.UserID.String(),
		"date_submitted":   c.CheckinDate.UTC().Format(dateLayout),
		"mood_today":       c.MoodToday,
		"confidence_today": c.ConfidenceToday,
		"medication_taken": c.MedicationTaken,
		"primary_concern":  c.PrimaryConcern,
		"user_note":        c.UserNote,
	}
	if c.MissedDoses != nil {
		fields["missed_doses"] = *c.MissedDoses
	}
	if c.AnxietyLevel != nil {
		fields["anxiety_level"] = *c.AnxietyLevel
	}
	if c.InjectionConfidence != nil {
		fields["injection_confidence"] = *c.InjectionConfidence
	}
	if c.PartnerInvolved != nil {
		fields["partner_involved"] = *c.PartnerInvolved
	}
	if len(c.Symptoms) > 0 {
		var symptoms []string
		if err := json.Unmarshal(c.Symptoms, &symptoms); err == nil {
			fields["symptoms"] = symptoms
		}
	}
	return fields
}

func fieldsToCheckin(fields map[string]any) *types.DailyCheckin {
	c := &types.DailyCheckin{
		ID:              parseUUID(fields["id"]),
		UserID:          parseUUID(fields["user_id"]),
		MoodToday:       asString(fields["mood_today"]),
		ConfidenceToday: asInt(fields["confidence_today"], 5),
		MedicationTaken: asString(fields["medication_taken"]),
		PrimaryConcern:  asString(fields["primary_concern"]),
		UserNote:        asString(fields["user_note"]),
	}
	if c.MedicationTaken == "" {
		c.MedicationTaken = types.MedicationNotTracked
	}
	if d, err := time.Parse(dateLayout, asString(fields["date_submitted"])); err == nil {
		c.CheckinDate = d
	}
	if v, ok := fields["missed_doses"]; ok {
		n := asInt(v, 0)
		c.MissedDoses = &n
	}
	if v, ok := fields["anxiety_level"]; ok {
		n := asInt(v, 0)
		c.AnxietyLevel = &n
	}
	if v, ok := fields["injection_confidence"]; ok {
		n := asInt(v, 0)
		c.InjectionConfidence = &n
	}
	if v, ok := fields["partner_involved"]; ok {
		b := asBool(v, false)
		c.PartnerInvolved = &b
	}
	if v, ok := fields["symptoms"]; ok {
		if raw, err := json.Marshal(v); err == nil {
			c.Symptoms = datatypes.JSON(raw)
		}
	}
	return c
}

func insightToFields(i *types.Insight) map[string]any {
	fields := map[string]any{
		"id":           i.ID.String(),
		"user_id":      i.UserID.String(),
		"trigger_type": i.TriggerType,
		"title":        i.Title,
		"body":         i.Body,
		"priority":     i.Priority,
	}
	if i.ExpiresAt != nil {
		fields["expires_at"] = i.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if len(i.TriggerData) > 0 {
		var data map[string]any
		if err := json.Unmarshal(i.TriggerData, &data); err == nil {
			fields["trigger_data"] = data
		}
	}
	return fields
}

func fieldsToInsight(fields map[string]any) *types.Insight {
	i := &types.Insight{
		ID:          parseUUID(fields["id"]),
		UserID:      parseUUID(fields["user_id"]),
		TriggerType: asString(fields["trigger_type"]),
		Title:       asString(fields["title"]),
		Body:        asString(fields["body"]),
		Priority:    asInt(fields["priority"], 0),
	}
	if v := asString(fields["expires_at"]); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			i.ExpiresAt = &t
		}
	}
	if v, ok := fields["trigger_data"]; ok {
		if raw, err := json.Marshal(v); err == nil {
			i.TriggerData = datatypes.JSON(raw)
		}
	}
	return i
}

func parseUUID(v any) uuid.UUID {
	id, err := uuid.Parse(asString(v))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

func asBool(v any, def bool) bool {
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}
