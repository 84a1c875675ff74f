package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

type CheckinRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, checkin *types.DailyCheckin) (*types.DailyCheckin, error)
	GetRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time, limit int) ([]*types.DailyCheckin, error)
	GetRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.DailyCheckin, error)
}

type checkinRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCheckinRepo(db *gorm.DB, baseLog *logger.Logger) CheckinRepo {
	repoLog := baseLog.With("repo", "CheckinRepo")
	return &checkinRepo{db: db, log: repoLog}
}

// Upsert converges concurrent writes for the same (user, date) onto one row
// via the composite unique index.
func (cr *checkinRepo) Upsert(ctx context.Context, tx *gorm.DB, checkin *types.DailyCheckin) (*types.DailyCheckin, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if checkin.ID == uuid.Nil {
		checkin.ID = uuid.New()
	}
	checkin.CheckinDate = truncateToDay(checkin.CheckinDate)

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "checkin_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mood_today",
				"confidence_today",
				"medication_taken",
				"missed_doses",
				"symptoms",
				"primary_concern",
				"anxiety_level",
				"user_note",
				"injection_confidence",
				"partner_involved",
				"updated_at",
			}),
		}).
		Create(checkin).Error; err != nil {
		return nil, err
	}

	// Re-read so the caller sees the surviving row, not the candidate one.
	var stored types.DailyCheckin
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND checkin_date = ?", checkin.UserID, checkin.CheckinDate).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (cr *checkinRepo) GetRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time, limit int) ([]*types.DailyCheckin, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.DailyCheckin
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("checkin_date >= ? AND checkin_date <= ?", truncateToDay(start), truncateToDay(end)).
		Order("checkin_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *checkinRepo) GetRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.DailyCheckin, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if limit <= 0 {
		limit = 7
	}
	var results []*types.DailyCheckin
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checkin_date DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
