package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type MilestoneRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Milestone) ([]*types.Milestone, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Milestone, error)
	GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Milestone, error)
	Update(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID, updates map[string]interface{}) error
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	repoLog := baseLog.With("repo", "MilestoneRepo")
	return &milestoneRepo{db: db, log: repoLog}
}

func (r *milestoneRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Milestone) ([]*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Milestone{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *milestoneRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Milestone
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

func (r *milestoneRepo) GetByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Milestone
	if projectID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *milestoneRepo) Update(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if milestoneID == uuid.Nil || len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Milestone{}).
		Where("id = ?", milestoneID).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}
