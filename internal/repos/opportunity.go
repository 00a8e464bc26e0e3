package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type OpportunityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Opportunity) ([]*types.Opportunity, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Opportunity, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Opportunity, error)
	Update(ctx context.Context, tx *gorm.DB, opportunityID uuid.UUID, updates map[string]interface{}) error
	FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type opportunityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOpportunityRepo(db *gorm.DB, baseLog *logger.Logger) OpportunityRepo {
	repoLog := baseLog.With("repo", "OpportunityRepo")
	return &opportunityRepo{db: db, log: repoLog}
}

func (r *opportunityRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Opportunity) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Opportunity{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *opportunityRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Opportunity
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

func (r *opportunityRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Opportunity
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("match_score DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *opportunityRepo) Update(ctx context.Context, tx *gorm.DB, opportunityID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if opportunityID == uuid.Nil || len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Opportunity{}).
		Where("id = ?", opportunityID).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}

func (r *opportunityRepo) FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("user_id = ?", userID).
		Delete(&types.Opportunity{}).Error; err != nil {
		return err
	}
	return nil
}
