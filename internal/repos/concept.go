package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type ConceptRepo interface {
	// ReplaceForSubject drops any existing concept rows for the subject and
	// inserts the given batch. Regeneration always replaces, never appends.
	ReplaceForSubject(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, concepts []*types.Concept) ([]*types.Concept, error)
	GetBySubjectID(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) ([]*types.Concept, error)
	GetBySubjectAndSeq(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, seq int) (*types.Concept, error)
	SetLearned(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, learned bool) error
	CountLearnedBySubjectID(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) (int64, error)
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	repoLog := baseLog.With("repo", "ConceptRepo")
	return &conceptRepo{db: db, log: repoLog}
}

func (r *conceptRepo) ReplaceForSubject(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, concepts []*types.Concept) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if subjectID == uuid.Nil {
		return []*types.Concept{}, nil
	}

	if err := transaction.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Delete(&types.Concept{}).Error; err != nil {
		return nil, err
	}
	if len(concepts) == 0 {
		return []*types.Concept{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&concepts).Error; err != nil {
		return nil, err
	}
	return concepts, nil
}

func (r *conceptRepo) GetBySubjectID(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Concept
	if subjectID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *conceptRepo) GetBySubjectAndSeq(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, seq int) (*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Concept
	if err := transaction.WithContext(ctx).
		Where("subject_id = ? AND seq = ?", subjectID, seq).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *conceptRepo) SetLearned(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, learned bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if conceptID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Concept{}).
		Where("id = ?", conceptID).
		Update("learned", learned).Error; err != nil {
		return err
	}
	return nil
}

func (r *conceptRepo) CountLearnedBySubjectID(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Concept{}).
		Where("subject_id = ? AND learned = ?", subjectID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
