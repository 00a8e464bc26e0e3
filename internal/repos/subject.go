package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type SubjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, subjects []*types.Subject) ([]*types.Subject, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Subject, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Subject, error)
	GetByUserAndName(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) ([]*types.Subject, error)
	Update(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	repoLog := baseLog.With("repo", "SubjectRepo")
	return &subjectRepo{db: db, log: repoLog}
}

func (r *subjectRepo) Create(ctx context.Context, tx *gorm.DB, subjects []*types.Subject) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(subjects) == 0 {
		return []*types.Subject{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) GetByUserAndName(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	if userID == uuid.Nil || name == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) Update(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if subjectID == uuid.Nil || len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Subject{}).
		Where("id = ?", subjectID).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}

func (r *subjectRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Subject{}).Error; err != nil {
		return err
	}
	return nil
}
