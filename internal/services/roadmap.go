package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/clients/redisx"
	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

const (
	defaultTargetLevel    = 80.0
	defaultEstimatedWeeks = 4
	roadmapCacheTTL       = 15 * time.Minute
)

type RoadmapSkill struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	TargetLevel    float64 `json:"target_level"`
	EstimatedWeeks int     `json:"estimated_weeks"`
	WhyImportant   string  `json:"why_important"`
}

type RoadmapItem struct {
	Subject string         `json:"subject"`
	Skills  []RoadmapSkill `json:"skills"`
}

// RoadmapResult is a tagged result: Degraded marks a fallback payload built
// after a completion-service failure, with the reason kept for operators.
// Aggregates describe the AI response shape, not the post-reconciliation
// skill table.
type RoadmapResult struct {
	Roadmap        []RoadmapItem `json:"roadmap"`
	TotalSkills    int           `json:"total_skills"`
	EstimatedWeeks int           `json:"estimated_weeks"`
	Degraded       bool          `json:"degraded,omitempty"`
	DegradedReason string        `json:"degraded_reason,omitempty"`
	CreatedSkills  int           `json:"created_skills"`
}

type RoadmapService interface {
	// GenerateRoadmap builds a skill roadmap for the user's subjects and
	// reconciles the proposed skills into the skill table without
	// duplicating or mutating existing (owner, name) rows.
	GenerateRoadmap(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*RoadmapResult, error)
}

type roadmapService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	subjectRepo repos.SubjectRepo
	skillRepo   repos.SkillRepo
	completion  CompletionClient
	cache       *redisx.Cache
}

func NewRoadmapService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	subjectRepo repos.SubjectRepo,
	skillRepo repos.SkillRepo,
	completion CompletionClient,
	cache *redisx.Cache,
) RoadmapService {
	serviceLog := baseLog.With("service", "RoadmapService")
	return &roadmapService{
		db:          db,
		log:         serviceLog,
		userRepo:    userRepo,
		subjectRepo: subjectRepo,
		skillRepo:   skillRepo,
		completion:  completion,
		cache:       cache,
	}
}

func (rs *roadmapService) GenerateRoadmap(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*RoadmapResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = rs.db
	}

	users, err := rs.userRepo.GetByIDs(ctx, transaction, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	user := users[0]

	subjects, err := rs.subjectRepo.GetByUserID(ctx, transaction, userID)
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: add subjects first to generate a roadmap", ErrInvalidState)
	}

	// Recent roadmaps are served from cache; reconciliation already ran for
	// that payload and is idempotent anyway.
	cacheKey := "roadmap:" + userID.String()
	if cached, cErr := rs.cache.Get(ctx, cacheKey); cErr == nil && cached != "" {
		var result RoadmapResult
		if uErr := json.Unmarshal([]byte(cached), &result); uErr == nil {
			rs.log.Debug("Roadmap served from cache", "user_id", userID)
			return &result, nil
		}
	}

	result := rs.roadmapFromAI(ctx, subjects, user.CareerGoal)

	created, err := rs.reconcile(ctx, transaction, userID, subjects, result.Roadmap)
	if err != nil {
		return nil, err
	}
	result.CreatedSkills = created

	if payload, mErr := json.Marshal(result); mErr == nil {
		if cErr := rs.cache.Set(ctx, cacheKey, string(payload), roadmapCacheTTL); cErr != nil {
			rs.log.Warn("Failed to cache roadmap (ignored)", "error", cErr)
		}
	}

	return result, nil
}

func (rs *roadmapService) roadmapFromAI(ctx context.Context, subjects []*types.Subject, careerGoal string) *RoadmapResult {
	if careerGoal == "" {
		careerGoal = "Software Development"
	}

	var subjectList strings.Builder
	for _, s := range subjects {
		fmt.Fprintf(&subjectList, "- %s\n", s.Name)
	}

	system := "You are an expert academic advisor helping students map courses to practical skills."
	user := fmt.Sprintf(`You are an academic advisor AI. Generate a practical skill roadmap.

Enrolled Subjects:
%s
Career Goal: %s

For each subject, identify 3-5 key practical skills that students should master.
Focus on real-world, resume-worthy skills.

Return a JSON with this structure:
{
  "roadmap": [
    {
      "subject": "Subject Name",
      "skills": [
        {
          "name": "Skill name",
          "category": "Technical|Soft|Domain-specific",
          "target_level": 80,
          "estimated_weeks": 4,
          "why_important": "Brief explanation"
        }
      ]
    }
  ]
}`, subjectList.String(), careerGoal)

	degraded := func(reason string) *RoadmapResult {
		rs.log.Warn("Roadmap generation degraded, using fallback roadmap", "reason", reason)
		return &RoadmapResult{
			Roadmap: []RoadmapItem{
				{
					Subject: subjects[0].Name,
					Skills: []RoadmapSkill{
						{
							Name:           "Problem Solving",
							Category:       "Technical",
							TargetLevel:    75,
							EstimatedWeeks: 8,
							WhyImportant:   "Essential for all technical work",
						},
					},
				},
			},
			TotalSkills:    1,
			EstimatedWeeks: 8,
			Degraded:       true,
			DegradedReason: reason,
		}
	}

	if rs.completion == nil {
		return degraded("completion service not configured")
	}

	obj, err := rs.completion.GenerateJSON(ctx, system, user)
	if err != nil {
		return degraded(err.Error())
	}

	items, ok := parseRoadmapItems(obj)
	if !ok {
		return degraded("malformed roadmap payload")
	}

	result := &RoadmapResult{Roadmap: items}
	for _, item := range items {
		result.TotalSkills += len(item.Skills)
		for _, skill := range item.Skills {
			result.EstimatedWeeks += skill.EstimatedWeeks
		}
	}
	return result
}

func parseRoadmapItems(obj map[string]any) ([]RoadmapItem, bool) {
	rawItems, ok := obj["roadmap"].([]any)
	if !ok || len(rawItems) == 0 {
		return nil, false
	}

	items := make([]RoadmapItem, 0, len(rawItems))
	for _, rawItem := range rawItems {
		m, ok := rawItem.(map[string]any)
		if !ok {
			continue
		}
		item := RoadmapItem{}
		item.Subject, _ = m["subject"].(string)

		rawSkills, _ := m["skills"].([]any)
		for _, rawSkill := range rawSkills {
			sm, ok := rawSkill.(map[string]any)
			if !ok {
				continue
			}
			name, _ := sm["name"].(string)
			if name == "" {
				continue
			}
			skill := RoadmapSkill{
				Name:           name,
				TargetLevel:    defaultTargetLevel,
				EstimatedWeeks: defaultEstimatedWeeks,
			}
			if category, ok := sm["category"].(string); ok && category != "" {
				skill.Category = category
			} else {
				skill.Category = "Technical"
			}
			if target, ok := sm["target_level"].(float64); ok {
				skill.TargetLevel = target
			}
			if weeks, ok := sm["estimated_weeks"].(float64); ok {
				skill.EstimatedWeeks = int(weeks)
			}
			skill.WhyImportant, _ = sm["why_important"].(string)
			item.Skills = append(item.Skills, skill)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

// reconcile merges proposed skills into the user's skill set. Existing
// (owner, name) rows are skipped untouched; new rows start at proficiency 0
// and attach to a subject only on an exact name match.
func (rs *roadmapService) reconcile(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subjects []*types.Subject, items []RoadmapItem) (int, error) {
	subjectByName := make(map[string]*types.Subject, len(subjects))
	for _, s := range subjects {
		subjectByName[s.Name] = s
	}

	names := make([]string, 0)
	for _, item := range items {
		for _, skill := range item.Skills {
			names = append(names, skill.Name)
		}
	}
	existing, err := rs.skillRepo.GetByUserAndNames(ctx, tx, userID, names)
	if err != nil {
		return 0, fmt.Errorf("load existing skills: %w", err)
	}
	existingByName := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		existingByName[s.Name] = struct{}{}
	}

	now := time.Now()
	toCreate := make([]*types.Skill, 0)
	for _, item := range items {
		var subjectID *uuid.UUID
		if subject, ok := subjectByName[item.Subject]; ok {
			id := subject.ID
			subjectID = &id
		}
		for _, proposed := range item.Skills {
			if _, ok := existingByName[proposed.Name]; ok {
				continue
			}
			existingByName[proposed.Name] = struct{}{}
			toCreate = append(toCreate, &types.Skill{
				ID:               uuid.New(),
				UserID:           userID,
				SubjectID:        subjectID,
				Name:             proposed.Name,
				Category:         proposed.Category,
				ProficiencyLevel: 0,
				TargetLevel:      proposed.TargetLevel,
				CreatedAt:        now,
				UpdatedAt:        now,
			})
		}
	}

	if _, err := rs.skillRepo.Create(ctx, tx, toCreate); err != nil {
		return 0, fmt.Errorf("create skills: %w", err)
	}
	return len(toCreate), nil
}
