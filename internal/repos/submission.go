package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type SubmissionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Submission) ([]*types.Submission, error)
	GetBySubjectID(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) ([]*types.Submission, error)
	CountBySubjectID(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) (int64, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	repoLog := baseLog.With("repo", "SubmissionRepo")
	return &submissionRepo{db: db, log: repoLog}
}

func (r *submissionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Submission) ([]*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Submission{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *submissionRepo) GetBySubjectID(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) ([]*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Submission
	if subjectID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("submitted_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *submissionRepo) CountBySubjectID(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Submission{}).
		Where("subject_id = ?", subjectID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
