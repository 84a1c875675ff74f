package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

// HealthEventRepo is append-only on purpose: there is no update or delete
// method. Corrections are recorded as new events.
type HealthEventRepo interface {
	Append(ctx context.Context, tx *gorm.DB, events []*types.HealthEvent) ([]*types.HealthEvent, error)
	Timeline(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time, eventTypes []string, limit int) ([]*types.HealthEvent, error)
	InRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.HealthEvent, error)
	CountForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type healthEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHealthEventRepo(db *gorm.DB, baseLog *logger.Logger) HealthEventRepo {
	repoLog := baseLog.With("repo", "HealthEventRepo")
	return &healthEventRepo{db: db, log: repoLog}
}

func (er *healthEventRepo) Append(ctx context.Context, tx *gorm.DB, events []*types.HealthEvent) ([]*types.HealthEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	if len(events) == 0 {
		return []*types.HealthEvent{}, nil
	}

	for _, e := range events {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Timeline returns events newest-first, range inclusive on both ends.
func (er *healthEventRepo) Timeline(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time, eventTypes []string, limit int) ([]*types.HealthEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("occurred_at >= ? AND occurred_at <= ?", start, end)
	if len(eventTypes) > 0 {
		q = q.Where("event_type IN ?", eventTypes)
	}
	q = q.Order("occurred_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.HealthEvent
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// InRange returns events oldest-first for correlation-group reconstruction.
func (er *healthEventRepo) InRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.HealthEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.HealthEvent
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("occurred_at >= ? AND occurred_at <= ?", start, end).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *healthEventRepo) CountForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.HealthEvent{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
