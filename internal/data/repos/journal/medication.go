package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
	apperrors "github.com/yungbote/healthjournal-backend/internal/pkg/errors"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

type MedicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, med *types.Medication) (*types.Medication, error)
	GetOwned(ctx context.Context, tx *gorm.DB, userID, medicationID uuid.UUID) (*types.Medication, error)
	AppendLog(ctx context.Context, tx *gorm.DB, entry *types.MedicationLog) (*types.MedicationLog, error)
	LogsInRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.MedicationLog, error)
}

type medicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicationRepo(db *gorm.DB, baseLog *logger.Logger) MedicationRepo {
	repoLog := baseLog.With("repo", "MedicationRepo")
	return &medicationRepo{db: db, log: repoLog}
}

func (mr *medicationRepo) Create(ctx context.Context, tx *gorm.DB, med *types.Medication) (*types.Medication, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if med.ID == uuid.Nil {
		med.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(med).Error; err != nil {
		return nil, err
	}
	return med, nil
}

// GetOwned enforces medication ownership: a medication belonging to another
// user is indistinguishable from a missing one.
func (mr *medicationRepo) GetOwned(ctx context.Context, tx *gorm.DB, userID, medicationID uuid.UUID) (*types.Medication, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var result types.Medication
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", medicationID, userID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (mr *medicationRepo) AppendLog(ctx context.Context, tx *gorm.DB, entry *types.MedicationLog) (*types.MedicationLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (mr *medicationRepo) LogsInRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) ([]*types.MedicationLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.MedicationLog
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("taken_at >= ? AND taken_at <= ?", start, end).
		Order("taken_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
