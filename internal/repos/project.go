package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Project, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error)
	GetByUserAndStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) ([]*types.Project, error)
	Update(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	repoLog := baseLog.With("repo", "ProjectRepo")
	return &projectRepo{db: db, log: repoLog}
}

func (r *projectRepo) Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(projects) == 0 {
		return []*types.Project{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Project
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

func (r *projectRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Project
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *projectRepo) GetByUserAndStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Project
	if userID == uuid.Nil || status == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *projectRepo) Update(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if projectID == uuid.Nil || len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Project{}).
		Where("id = ?", projectID).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}

func (r *projectRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Project{}).Error; err != nil {
		return err
	}
	return nil
}
