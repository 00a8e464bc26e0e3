package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type CVRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.CV, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.CV) error
}

type cvRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCVRepo(db *gorm.DB, baseLog *logger.Logger) CVRepo {
	repoLog := baseLog.With("repo", "CVRepo")
	return &cvRepo{db: db, log: repoLog}
}

func (r *cvRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.CV, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return nil, nil
	}

	var results []*types.CV
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *cvRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.CV) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// One CV per user_id
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", row.UserID).
		Assign(row).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}
