package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type SkillRepo interface {
	Create(ctx context.Context, tx *gorm.DB, skills []*types.Skill) ([]*types.Skill, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Skill, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Skill, error)
	// GetByUserAndNames matches case-sensitively; reconciliation relies on
	// exact-name equality.
	GetByUserAndNames(ctx context.Context, tx *gorm.DB, userID uuid.UUID, names []string) ([]*types.Skill, error)
	Update(ctx context.Context, tx *gorm.DB, skillID uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	repoLog := baseLog.With("repo", "SkillRepo")
	return &skillRepo{db: db, log: repoLog}
}

func (r *skillRepo) Create(ctx context.Context, tx *gorm.DB, skills []*types.Skill) ([]*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(skills) == 0 {
		return []*types.Skill{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *skillRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Skill
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

func (r *skillRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Skill
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

func (r *skillRepo) GetByUserAndNames(ctx context.Context, tx *gorm.DB, userID uuid.UUID, names []string) ([]*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Skill
	if userID == uuid.Nil || len(names) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND name IN ?", userID, names).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *skillRepo) Update(ctx context.Context, tx *gorm.DB, skillID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if skillID == uuid.Nil || len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Skill{}).
		Where("id = ?", skillID).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}

func (r *skillRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Skill{}).Error; err != nil {
		return err
	}
	return nil
}
