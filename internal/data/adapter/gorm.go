package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/healthjournal-backend/internal/data/db"
	"github.com/yungbote/healthjournal-backend/internal/data/repos/journal"
	userrepo "github.com/yungbote/healthjournal-backend/internal/data/repos/user"
	types "github.com/yungbote/healthjournal-backend/internal/domain"
	apperrors "github.com/yungbote/healthjournal-backend/internal/pkg/errors"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
	"github.com/yungbote/healthjournal-backend/internal/services"
)

type dbService interface {
	DB() *gorm.DB
	Close() error
	AutoMigrateAll() error
}

// gormAdapter serves both the relational and the embedded file backend: the
// same typed CRUD over whichever gorm dialect the selector opened. Schema
// versioning is delegated to the compatibility shim; the embedded backend is
// always V1.
type gormAdapter struct {
	log   *logger.Logger
	svc   dbService
	useV2 bool

	users    userrepo.UserRepo
	insights journal.InsightRepo

	store  *services.EventStore
	compat *services.CompatService

	now func() time.Time
}

func newPostgresBackend(log *logger.Logger, cfg Config) (Adapter, error) {
	svc, err := db.NewPostgresService(log, cfg.DatabaseURL)
	if err != nil {
		return nil, &BootstrapError{Code: BootstrapErrorConnectFailed, Mode: ModePostgres, Cause: err}
	}
	if err := svc.AutoMigrateAll(); err != nil {
		_ = svc.Close()
		return nil, &BootstrapError{Code: BootstrapErrorMigrateFailed, Mode: ModePostgres, Cause: err}
	}
	return newGormAdapter(log.With("adapter", "postgres"), svc, cfg.UseV2Schema), nil
}

func newSQLiteBackend(log *logger.Logger, cfg Config) (Adapter, error) {
	svc, err := db.NewSQLiteService(log, cfg.SQLitePath)
	if err != nil {
		return nil, &BootstrapError{Code: BootstrapErrorConnectFailed, Mode: ModeSQLite, Cause: err}
	}
	if err := svc.AutoMigrateAll(); err != nil {
		_ = svc.Close()
		return nil, &BootstrapError{Code: BootstrapErrorMigrateFailed, Mode: ModeSQLite, Cause: err}
	}
	// The embedded backend has no event log; V2 is never active here.
	return newGormAdapter(log.With("adapter", "sqlite"), svc, false), nil
}

func newGormAdapter(log *logger.Logger, svc dbService, useV2 bool) *gormAdapter {
	gdb := svc.DB()

	users := userrepo.NewUserRepo(gdb, log)
	checkins := journal.NewCheckinRepo(gdb, log)
	events := journal.NewHealthEventRepo(gdb, log)
	insights := journal.NewInsightRepo(gdb, log)
	medications := journal.NewMedicationRepo(gdb, log)
	assessments := journal.NewAssessmentRepo(gdb, log)

	store := services.NewEventStore(gdb, log, events, insights, medications, assessments)
	compat := services.NewCompatService(log, checkins, events, store, useV2)

	return &gormAdapter{
		log:      log,
		svc:      svc,
		useV2:    useV2,
		users:    users,
		insights: insights,
		store:    store,
		compat:   compat,
		now:      time.Now,
	}
}

func (a *gormAdapter) FindUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return a.users.GetByEmail(ctx, nil, email)
}

func (a *gormAdapter) FindUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return a.users.GetByID(ctx, nil, userID)
}

func (a *gormAdapter) CreateUser(ctx context.Context, user *types.User) (*types.User, error) {
	return a.users.Create(ctx, nil, user)
}

func (a *gormAdapter) UpdateUser(ctx context.Context, userID uuid.UUID, fields map[string]any) (*types.User, error) {
	schema, err := schemaFor(TableUsers)
	if err != nil {
		return nil, err
	}
	projected := schema.project(fields)
	delete(projected, "id")

	if err := a.users.UpdateFields(ctx, nil, userID, projected); err != nil {
		return nil, err
	}
	return a.users.GetByID(ctx, nil, userID)
}

func (a *gormAdapter) CreateCheckin(ctx context.Context, userID uuid.UUID, fields services.CheckinFields) (*types.DailyCheckin, error) {
	return a.compat.CreateDailyCheckin(ctx, userID, fields)
}

func (a *gormAdapter) GetUserCheckins(ctx context.Context, userID uuid.UUID, q services.CheckinQuery) ([]*types.DailyCheckin, error) {
	return a.compat.GetDailyCheckins(ctx, userID, q)
}

func (a *gormAdapter) GetRecentCheckins(ctx context.Context, userID uuid.UUID, limit int) ([]*types.DailyCheckin, error) {
	if limit <= 0 {
		limit = 7
	}
	return a.compat.GetDailyCheckins(ctx, userID, services.CheckinQuery{Limit: limit})
}

func (a *gormAdapter) GetAnalytics(ctx context.Context, userID uuid.UUID, timeframe string) (*services.AnalyticsSummary, error) {
	return a.compat.GetAnalytics(ctx, userID, timeframe)
}

func (a *gormAdapter) CreateInsight(ctx context.Context, insight *types.Insight) (*types.Insight, error) {
	return a.insights.Create(ctx, nil, insight)
}

func (a *gormAdapter) GetUserInsights(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Insight, error) {
	return a.insights.ActiveForUser(ctx, nil, userID, a.now(), limit)
}

func (a *gormAdapter) CreateHealthEvent(ctx context.Context, userID uuid.UUID, in services.CreateEventInput) (*types.HealthEvent, error) {
	if !a.useV2 {
		return nil, fmt.Errorf("createHealthEvent: %w", apperrors.ErrSchemaDisabled)
	}
	return a.store.CreateHealthEvent(ctx, userID, in)
}

func (a *gormAdapter) GetHealthTimeline(ctx context.Context, userID uuid.UUID, opts services.TimelineOptions) ([]*types.HealthEvent, error) {
	if !a.useV2 {
		return nil, fmt.Errorf("getHealthTimeline: %w", apperrors.ErrSchemaDisabled)
	}
	return a.store.GetHealthTimeline(ctx, userID, opts)
}

func (a *gormAdapter) CompleteAssessment(ctx context.Context, userID uuid.UUID, assessmentType string, responses map[string]int) (*services.AssessmentResult, error) {
	if !a.useV2 {
		return nil, fmt.Errorf("completeAssessment: %w", apperrors.ErrSchemaDisabled)
	}
	return a.store.CompleteAssessment(ctx, userID, assessmentType, responses)
}

func (a *gormAdapter) RecordMedicationTaken(ctx context.Context, userID, medicationID uuid.UUID, opts services.MedicationTakenOptions) (*types.HealthEvent, error) {
	if !a.useV2 {
		return nil, fmt.Errorf("recordMedicationTaken: %w", apperrors.ErrSchemaDisabled)
	}
	return a.store.RecordMedicationTaken(ctx, userID, medicationID, opts)
}

func (a *gormAdapter) Query(ctx context.Context, table string, filter map[string]any, limit int) ([]Record, error) {
	schema, err := schemaFor(table)
	if err != nil {
		return nil, err
	}
	projected := schema.project(filter)

	gdb := a.svc.DB().WithContext(ctx)

	switch table {
	case TableUsers:
		var rows []*types.User
		if err := applyFilter(gdb.Model(&types.User{}), table, projected, limit).Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			row.ApplyLegacyDefaults()
			records = append(records, Record{ID: row.ID.String(), Fields: schema.project(userToFields(row))})
		}
		return records, nil

	case TableCheckins:
		var rows []*types.DailyCheckin
		if err := applyFilter(gdb.Model(&types.DailyCheckin{}), table, projected, limit).Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, Record{ID: row.ID.String(), Fields: schema.project(checkinToFields(row))})
		}
		return records, nil

	case TableInsights:
		var rows []*types.Insight
		if err := applyFilter(gdb.Model(&types.Insight{}), table, projected, limit).Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, Record{ID: row.ID.String(), Fields: schema.project(insightToFields(row))})
		}
		return records, nil
	}

	return nil, fmt.Errorf("table %q: %w", table, apperrors.ErrInvalidArgument)
}

// Field names in the record shape mostly match column names; the checkin
// date is the one rename.
func columnFor(table, field string) string {
	if table == TableCheckins && field == "date_submitted" {
		return "checkin_date"
	}
	return field
}

func applyFilter(q *gorm.DB, table string, filter map[string]any, limit int) *gorm.DB {
	for field, value := range filter {
		q = q.Where(fmt.Sprintf("%s = ?", columnFor(table, field)), value)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func (a *gormAdapter) Close() error {
	return a.svc.Close()
}
