package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

type InsightRepo interface {
	Create(ctx context.Context, tx *gorm.DB, insight *types.Insight) (*types.Insight, error)
	ActiveForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*types.Insight, error)
}

type insightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	repoLog := baseLog.With("repo", "InsightRepo")
	return &insightRepo{db: db, log: repoLog}
}

func (ir *insightRepo) Create(ctx context.Context, tx *gorm.DB, insight *types.Insight) (*types.Insight, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	if insight.ID == uuid.Nil {
		insight.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(insight).Error; err != nil {
		return nil, err
	}
	return insight, nil
}

func (ir *insightRepo) ActiveForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*types.Insight, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("priority DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.Insight
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
