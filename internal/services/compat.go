package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/healthjournal-backend/internal/data/repos/journal"
	types "github.com/yungbote/healthjournal-backend/internal/domain"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

type CheckinQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// checkinStrategy is the read/write/analytics capability set behind the
// compatibility shim. One implementation per schema version.
type checkinStrategy interface {
	createDailyCheckin(ctx context.Context, userID uuid.UUID, fields CheckinFields) (*types.DailyCheckin, error)
	getDailyCheckins(ctx context.Context, userID uuid.UUID, q CheckinQuery) ([]*types.DailyCheckin, error)
	getAnalytics(ctx context.Context, userID uuid.UUID, timeframe string) (*AnalyticsSummary, error)
}

// CompatService makes both schema versions observably identical to callers.
// The strategy is chosen once at construction from the process-lifetime
// useV2 flag and never re-checked per call; mixed mode within one running
// process is unsupported by design.
type CompatService struct {
	log      *logger.Logger
	strategy checkinStrategy
}

func NewCompatService(
	baseLog *logger.Logger,
	checkins journal.CheckinRepo,
	eventRepo journal.HealthEventRepo,
	eventStore *EventStore,
	useV2 bool,
) *CompatService {
	log := baseLog.With("service", "CompatService", "schema_v2", useV2)

	var strategy checkinStrategy
	if useV2 {
		strategy = &v2Strategy{events: eventRepo, store: eventStore, now: time.Now}
	} else {
		strategy = &v1Strategy{checkins: checkins, now: time.Now}
	}

	return &CompatService{log: log, strategy: strategy}
}

func (c *CompatService) CreateDailyCheckin(ctx context.Context, userID uuid.UUID, fields CheckinFields) (*types.DailyCheckin, error) {
	return c.strategy.createDailyCheckin(ctx, userID, fields)
}

func (c *CompatService) GetDailyCheckins(ctx context.Context, userID uuid.UUID, q CheckinQuery) ([]*types.DailyCheckin, error) {
	return c.strategy.getDailyCheckins(ctx, userID, q)
}

func (c *CompatService) GetAnalytics(ctx context.Context, userID uuid.UUID, timeframe string) (*AnalyticsSummary, error) {
	return c.strategy.getAnalytics(ctx, userID, timeframe)
}

// resolveWindow applies the shared defaults: inclusive range ending today,
// 30 days wide. Both strategies go through this so their filtering agrees.
func resolveWindow(q CheckinQuery, now time.Time) (time.Time, time.Time) {
	end := now
	if q.EndDate != nil {
		end = *q.EndDate
	}
	start := end.AddDate(0, 0, -30)
	if q.StartDate != nil {
		start = *q.StartDate
	}
	return start, end
}

func analyticsWindow(timeframe string, now time.Time) (time.Time, time.Time) {
	days := TimeframeDays(timeframe)
	return now.AddDate(0, 0, -days), now
}

// --- V1: flat table ---

type v1Strategy struct {
	checkins journal.CheckinRepo
	now      func() time.Time
}

func (s *v1Strategy) createDailyCheckin(ctx context.Context, userID uuid.UUID, fields CheckinFields) (*types.DailyCheckin, error) {
	date := fields.Date
	if date.IsZero() {
		date = s.now()
	}

	medicationTaken := fields.MedicationTaken
	if medicationTaken == "" {
		medicationTaken = types.MedicationNotTracked
	}

	row := &types.DailyCheckin{
		UserID:              userID,
		CheckinDate:         date,
		MoodToday:           fields.MoodToday,
		ConfidenceToday:     fields.ConfidenceToday,
		MedicationTaken:     medicationTaken,
		MissedDoses:         fields.MissedDoses,
		PrimaryConcern:      fields.PrimaryConcern,
		AnxietyLevel:        fields.AnxietyLevel,
		UserNote:            fields.UserNote,
		InjectionConfidence: fields.InjectionConfidence,
		PartnerInvolved:     fields.PartnerInvolved,
	}
	if len(fields.Symptoms) > 0 {
		raw, err := marshalPayload(fields.Symptoms)
		if err != nil {
			return nil, err
		}
		row.Symptoms = raw
	}

	return s.checkins.Upsert(ctx, nil, row)
}

func (s *v1Strategy) getDailyCheckins(ctx context.Context, userID uuid.UUID, q CheckinQuery) ([]*types.DailyCheckin, error) {
	start, end := resolveWindow(q, s.now())
	return s.checkins.GetRange(ctx, nil, userID, start, end, q.Limit)
}

func (s *v1Strategy) getAnalytics(ctx context.Context, userID uuid.UUID, timeframe string) (*AnalyticsSummary, error) {
	start, end := analyticsWindow(timeframe, s.now())
	rows, err := s.checkins.GetRange(ctx, nil, userID, start, end, 0)
	if err != nil {
		return nil, err
	}
	return SummarizeCheckins(timeframe, rows), nil
}

// --- V2: event log behind the compatibility view ---

type v2Strategy struct {
	events journal.HealthEventRepo
	store  *EventStore
	now    func() time.Time
}

func (s *v2Strategy) createDailyCheckin(ctx context.Context, userID uuid.UUID, fields CheckinFields) (*types.DailyCheckin, error) {
	events, err := s.store.CreateDailyCheckin(ctx, userID, fields)
	if err != nil {
		return nil, err
	}

	// Reassemble the V1 shape from the events just written so the caller
	// stays schema-agnostic.
	rows := BuildCompatibilityView(events)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *v2Strategy) getDailyCheckins(ctx context.Context, userID uuid.UUID, q CheckinQuery) ([]*types.DailyCheckin, error) {
	start, end := resolveWindow(q, s.now())

	events, err := s.events.InRange(ctx, nil, userID, startOfDay(start), endOfDay(end))
	if err != nil {
		return nil, err
	}

	rows := BuildCompatibilityView(events)
	rows = filterRowsInclusive(rows, start, end)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CheckinDate.After(rows[j].CheckinDate)
	})
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (s *v2Strategy) getAnalytics(ctx context.Context, userID uuid.UUID, timeframe string) (*AnalyticsSummary, error) {
	start, end := analyticsWindow(timeframe, s.now())
	events, err := s.events.InRange(ctx, nil, userID, startOfDay(start), endOfDay(end))
	if err != nil {
		return nil, err
	}
	rows := filterRowsInclusive(BuildCompatibilityView(events), start, end)
	return SummarizeCheckins(timeframe, rows), nil
}

func filterRowsInclusive(rows []*types.DailyCheckin, start, end time.Time) []*types.DailyCheckin {
	s, e := startOfDay(start), endOfDay(end)
	out := rows[:0]
	for _, row := range rows {
		if row.CheckinDate.Before(s) || row.CheckinDate.After(e) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}
