package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type SkillService interface {
	CreateSkill(ctx context.Context, tx *gorm.DB, userID uuid.UUID, skill *types.Skill) (*types.Skill, error)
	GetSkills(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Skill, error)
	UpdateProficiency(ctx context.Context, tx *gorm.DB, userID, skillID uuid.UUID, proficiency float64) (*types.Skill, error)
	DeleteSkill(ctx context.Context, tx *gorm.DB, userID, skillID uuid.UUID) error
}

type skillService struct {
	db        *gorm.DB
	log       *logger.Logger
	skillRepo repos.SkillRepo
}

func NewSkillService(db *gorm.DB, baseLog *logger.Logger, skillRepo repos.SkillRepo) SkillService {
	serviceLog := baseLog.With("service", "SkillService")
	return &skillService{db: db, log: serviceLog, skillRepo: skillRepo}
}

func (ss *skillService) CreateSkill(ctx context.Context, tx *gorm.DB, userID uuid.UUID, skill *types.Skill) (*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	if skill == nil || strings.TrimSpace(skill.Name) == "" {
		return nil, fmt.Errorf("%w: skill name is required", ErrInvalidState)
	}
	skill.Name = strings.TrimSpace(skill.Name)

	existing, err := ss.skillRepo.GetByUserAndNames(ctx, transaction, userID, []string{skill.Name})
	if err != nil {
		return nil, fmt.Errorf("check existing skill: %w", err)
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	skill.ID = uuid.New()
	skill.UserID = userID
	if skill.ProficiencyLevel < 0 {
		skill.ProficiencyLevel = 0
	}
	if skill.TargetLevel <= 0 {
		skill.TargetLevel = defaultTargetLevel
	}

	created, err := ss.skillRepo.Create(ctx, transaction, []*types.Skill{skill})
	if err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return created[0], nil
}

func (ss *skillService) GetSkills(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	return ss.skillRepo.GetByUserID(ctx, transaction, userID)
}

func (ss *skillService) UpdateProficiency(ctx context.Context, tx *gorm.DB, userID, skillID uuid.UUID, proficiency float64) (*types.Skill, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	skill, err := ss.loadOwnedSkill(ctx, transaction, userID, skillID)
	if err != nil {
		return nil, err
	}

	if proficiency < 0 {
		proficiency = 0
	}
	if proficiency > 100 {
		proficiency = 100
	}

	updates := map[string]interface{}{
		"proficiency_level": proficiency,
		"updated_at":        time.Now(),
	}
	if proficiency >= skill.TargetLevel && skill.AcquiredDate == nil {
		now := time.Now()
		updates["acquired_date"] = now
	}
	if err := ss.skillRepo.Update(ctx, transaction, skill.ID, updates); err != nil {
		return nil, fmt.Errorf("update proficiency: %w", err)
	}
	return ss.loadOwnedSkill(ctx, transaction, userID, skillID)
}

func (ss *skillService) DeleteSkill(ctx context.Context, tx *gorm.DB, userID, skillID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	if _, err := ss.loadOwnedSkill(ctx, transaction, userID, skillID); err != nil {
		return err
	}
	return ss.skillRepo.SoftDeleteByIDs(ctx, transaction, []uuid.UUID{skillID})
}

func (ss *skillService) loadOwnedSkill(ctx context.Context, tx *gorm.DB, userID, skillID uuid.UUID) (*types.Skill, error) {
	skills, err := ss.skillRepo.GetByIDs(ctx, tx, []uuid.UUID{skillID})
	if err != nil {
		return nil, fmt.Errorf("load skill: %w", err)
	}
	if len(skills) == 0 || skills[0] == nil || skills[0].UserID != userID {
		return nil, fmt.Errorf("%w: skill %s", ErrNotFound, skillID)
	}
	return skills[0], nil
}
