package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type MatchResult struct {
	Message       string               `json:"message"`
	Opportunities []*types.Opportunity `json:"opportunities"`
}

type OpportunityService interface {
	GetOpportunities(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Opportunity, error)
	// MatchOpportunities replaces the user's opportunity feed with a fresh
	// set scored against their current skills. Requires at least one skill.
	MatchOpportunities(ctx context.Context, userID uuid.UUID) (*MatchResult, error)
	MarkApplied(ctx context.Context, tx *gorm.DB, userID, opportunityID uuid.UUID) (*types.Opportunity, error)
}

type opportunityCatalogEntry struct {
	Title          string
	Company        string
	Location       string
	Type           string
	Description    string
	RequiredSkills []string
	BaseScore      float64
	URL            string
}

// Curated catalog the matcher scores against. A production deployment would
// pull live postings instead.
var opportunityCatalog = []opportunityCatalogEntry{
	{
		Title:          "Software Engineering Intern",
		Company:        "Tech Corp",
		Location:       "Remote",
		Type:           "internship",
		Description:    "Looking for students with programming and problem-solving skills",
		RequiredSkills: []string{"Python", "JavaScript", "Problem Solving"},
		BaseScore:      85.0,
		URL:            "https://example.com/job1",
	},
	{
		Title:          "Data Science Intern",
		Company:        "Data Analytics Inc",
		Location:       "New York",
		Type:           "internship",
		Description:    "Seeking students with data analysis and ML experience",
		RequiredSkills: []string{"Python", "Data Analysis", "Machine Learning"},
		BaseScore:      78.0,
		URL:            "https://example.com/job2",
	},
	{
		Title:          "Full Stack Developer",
		Company:        "StartupXYZ",
		Location:       "San Francisco",
		Type:           "job",
		Description:    "Full-time position for graduates with web development skills",
		RequiredSkills: []string{"JavaScript", "React", "Node.js", "Database Design"},
		BaseScore:      72.0,
		URL:            "https://example.com/job3",
	},
	{
		Title:          "Research Assistant",
		Company:        "University Lab",
		Location:       "Boston",
		Type:           "research",
		Description:    "Research opportunity in AI/ML",
		RequiredSkills: []string{"Machine Learning", "Python", "Research"},
		BaseScore:      68.0,
		URL:            "https://example.com/job4",
	},
}

type opportunityService struct {
	db              *gorm.DB
	log             *logger.Logger
	opportunityRepo repos.OpportunityRepo
	skillRepo       repos.SkillRepo
}

func NewOpportunityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	opportunityRepo repos.OpportunityRepo,
	skillRepo repos.SkillRepo,
) OpportunityService {
	serviceLog := baseLog.With("service", "OpportunityService")
	return &opportunityService{
		db:              db,
		log:             serviceLog,
		opportunityRepo: opportunityRepo,
		skillRepo:       skillRepo,
	}
}

func (os *opportunityService) GetOpportunities(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = os.db
	}
	return os.opportunityRepo.GetByUserID(ctx, transaction, userID)
}

func (os *opportunityService) MatchOpportunities(ctx context.Context, userID uuid.UUID) (*MatchResult, error) {
	skills, err := os.skillRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}
	if len(skills) == 0 {
		return nil, fmt.Errorf("%w: no skills found, generate your skill roadmap first", ErrInvalidState)
	}

	owned := make(map[string]bool, len(skills))
	for _, s := range skills {
		owned[strings.ToLower(s.Name)] = true
	}

	var created []*types.Opportunity
	err = os.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The feed is replaced wholesale on every match run.
		if err := os.opportunityRepo.FullDeleteByUserID(ctx, tx, userID); err != nil {
			return fmt.Errorf("clear opportunities: %w", err)
		}

		rows := make([]*types.Opportunity, 0, len(opportunityCatalog))
		for _, entry := range opportunityCatalog {
			requiredJSON, mErr := json.Marshal(entry.RequiredSkills)
			if mErr != nil {
				return fmt.Errorf("marshal required skills: %w", mErr)
			}
			rows = append(rows, &types.Opportunity{
				ID:             uuid.New(),
				UserID:         userID,
				Title:          entry.Title,
				Company:        entry.Company,
				Location:       entry.Location,
				Type:           entry.Type,
				Description:    entry.Description,
				RequiredSkills: datatypes.JSON(requiredJSON),
				MatchScore:     scoreOpportunity(entry, owned),
				URL:            entry.URL,
			})
		}

		var cErr error
		created, cErr = os.opportunityRepo.Create(ctx, tx, rows)
		if cErr != nil {
			return fmt.Errorf("create opportunities: %w", cErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &MatchResult{
		Message:       fmt.Sprintf("Found %d matching opportunities", len(created)),
		Opportunities: created,
	}, nil
}

// scoreOpportunity blends the catalog base score with the share of required
// skills the user already owns.
func scoreOpportunity(entry opportunityCatalogEntry, owned map[string]bool) float64 {
	if len(entry.RequiredSkills) == 0 {
		return entry.BaseScore
	}
	matched := 0
	for _, required := range entry.RequiredSkills {
		if owned[strings.ToLower(required)] {
			matched++
		}
	}
	overlap := float64(matched) / float64(len(entry.RequiredSkills))
	score := entry.BaseScore*0.6 + overlap*100*0.4
	if score > 100 {
		score = 100
	}
	return score
}

func (os *opportunityService) MarkApplied(ctx context.Context, tx *gorm.DB, userID, opportunityID uuid.UUID) (*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = os.db
	}

	rows, err := os.opportunityRepo.GetByIDs(ctx, transaction, []uuid.UUID{opportunityID})
	if err != nil {
		return nil, fmt.Errorf("load opportunity: %w", err)
	}
	if len(rows) == 0 || rows[0] == nil || rows[0].UserID != userID {
		return nil, fmt.Errorf("%w: opportunity %s", ErrNotFound, opportunityID)
	}

	if err := os.opportunityRepo.Update(ctx, transaction, opportunityID, map[string]interface{}{
		"applied": true,
	}); err != nil {
		return nil, fmt.Errorf("mark applied: %w", err)
	}
	rows[0].Applied = true
	return rows[0], nil
}
