package journal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
	apperrors "github.com/yungbote/healthjournal-backend/internal/pkg/errors"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

type AssessmentRepo interface {
	CreateDefinition(ctx context.Context, tx *gorm.DB, def *types.AssessmentDefinition) (*types.AssessmentDefinition, error)
	LatestActiveByName(ctx context.Context, tx *gorm.DB, name string) (*types.AssessmentDefinition, error)
	CreateResponse(ctx context.Context, tx *gorm.DB, resp *types.AssessmentResponse) (*types.AssessmentResponse, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	repoLog := baseLog.With("repo", "AssessmentRepo")
	return &assessmentRepo{db: db, log: repoLog}
}

func (ar *assessmentRepo) CreateDefinition(ctx context.Context, tx *gorm.DB, def *types.AssessmentDefinition) (*types.AssessmentDefinition, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(def).Error; err != nil {
		return nil, err
	}
	return def, nil
}

func (ar *assessmentRepo) LatestActiveByName(ctx context.Context, tx *gorm.DB, name string) (*types.AssessmentDefinition, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.AssessmentDefinition
	if err := transaction.WithContext(ctx).
		Where("name = ? AND active = ?", name, true).
		Order("version DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (ar *assessmentRepo) CreateResponse(ctx context.Context, tx *gorm.DB, resp *types.AssessmentResponse) (*types.AssessmentResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(resp).Error; err != nil {
		return nil, err
	}
	return resp, nil
}
