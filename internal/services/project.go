package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type ProjectService interface {
	CreateProject(ctx context.Context, tx *gorm.DB, userID uuid.UUID, project *types.Project) (*types.Project, error)
	GetProjects(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error)
	GetProject(ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID) (*types.Project, error)
	// GenerateProject asks the completion service to design a project for the
	// given subject and stores it as not_started.
	GenerateProject(ctx context.Context, userID, subjectID uuid.UUID) (*types.Project, error)
	// UpdateProject applies the updates and, when the status flips to
	// completed, rebuilds the owner's CV snapshot in the same transaction.
	UpdateProject(ctx context.Context, userID, projectID uuid.UUID, updates map[string]interface{}) (*types.Project, error)
	DeleteProject(ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID) error
	GetMilestones(ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID) ([]*types.Milestone, error)
	CreateMilestone(ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID, milestone *types.Milestone) (*types.Milestone, error)
	CompleteMilestone(ctx context.Context, tx *gorm.DB, userID, milestoneID uuid.UUID) (*types.Milestone, error)
}

type generatedProject struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	ProblemStatement   string   `json:"problem_statement"`
	RequiredSkills     []string `json:"required_skills"`
	Deliverables       []string `json:"deliverables"`
	EvaluationCriteria []string `json:"evaluation_criteria"`
	EstimatedHours     int      `json:"estimated_hours"`
}

type projectService struct {
	db            *gorm.DB
	log           *logger.Logger
	projectRepo   repos.ProjectRepo
	subjectRepo   repos.SubjectRepo
	milestoneRepo repos.MilestoneRepo
	cvService     CVService
	completion    CompletionClient
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	subjectRepo repos.SubjectRepo,
	milestoneRepo repos.MilestoneRepo,
	cvService CVService,
	completion CompletionClient,
) ProjectService {
	serviceLog := baseLog.With("service", "ProjectService")
	return &projectService{
		db:            db,
		log:           serviceLog,
		projectRepo:   projectRepo,
		subjectRepo:   subjectRepo,
		milestoneRepo: milestoneRepo,
		cvService:     cvService,
		completion:    completion,
	}
}

func (ps *projectService) CreateProject(ctx context.Context, tx *gorm.DB, userID uuid.UUID, project *types.Project) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	if project == nil || strings.TrimSpace(project.Title) == "" {
		return nil, fmt.Errorf("%w: project title is required", ErrInvalidState)
	}

	project.ID = uuid.New()
	project.UserID = userID
	if project.Status == "" {
		project.Status = types.ProjectStatusNotStarted
	}

	created, err := ps.projectRepo.Create(ctx, transaction, []*types.Project{project})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return created[0], nil
}

func (ps *projectService) GetProjects(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}
	return ps.projectRepo.GetByUserID(ctx, transaction, userID)
}

func (ps *projectService) GetProject(ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}
	return ps.loadOwnedProject(ctx, transaction, userID, projectID)
}

func (ps *projectService) GenerateProject(ctx context.Context, userID, subjectID uuid.UUID) (*types.Project, error) {
	subjects, err := ps.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{subjectID})
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if len(subjects) == 0 || subjects[0] == nil || subjects[0].UserID != userID {
		return nil, fmt.Errorf("%w: subject %s", ErrNotFound, subjectID)
	}
	subject := subjects[0]

	gen := ps.projectFromAI(ctx, subject.Name, subject.Description)

	requiredSkills, _ := json.Marshal(gen.RequiredSkills)
	deliverables, _ := json.Marshal(gen.Deliverables)
	evaluationCriteria, _ := json.Marshal(gen.EvaluationCriteria)

	project := &types.Project{
		ID:                 uuid.New(),
		UserID:             userID,
		Title:              gen.Title,
		Description:        gen.Description,
		ProblemStatement:   gen.ProblemStatement,
		RequiredSkills:     datatypes.JSON(requiredSkills),
		Deliverables:       datatypes.JSON(deliverables),
		EvaluationCriteria: datatypes.JSON(evaluationCriteria),
		DifficultyLevel:    "Intermediate",
		EstimatedHours:     gen.EstimatedHours,
		Status:             types.ProjectStatusNotStarted,
	}
	created, err := ps.projectRepo.Create(ctx, nil, []*types.Project{project})
	if err != nil {
		return nil, fmt.Errorf("create generated project: %w", err)
	}
	return created[0], nil
}

func (ps *projectService) projectFromAI(ctx context.Context, subjectName, subjectDescription string) *generatedProject {
	if strings.TrimSpace(subjectDescription) == "" {
		subjectDescription = "General course"
	}

	system := "You are an expert project designer who creates practical, resume-worthy projects for students."
	prompt := fmt.Sprintf(`You are a project design AI. Create a practical, resume-worthy project.

Subject: %s
Description: %s
Difficulty: Intermediate

Generate a project that:
1. Demonstrates mastery of key concepts
2. Can be showcased on a resume
3. Has clear deliverables
4. Takes realistic time (20-40 hours)

Return JSON with this structure:
{
  "title": "Project Title",
  "description": "2-3 sentence overview",
  "problem_statement": "What problem does this solve?",
  "required_skills": ["skill1", "skill2", "skill3"],
  "deliverables": ["deliverable1", "deliverable2"],
  "evaluation_criteria": ["criteria1", "criteria2"],
  "estimated_hours": 30
}`, subjectName, subjectDescription)

	raw, err := ps.completion.GenerateJSON(ctx, system, prompt)
	if err != nil {
		ps.log.Warn("project generation degraded, using fallback", "subject", subjectName, "error", err)
		return fallbackProject(subjectName)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fallbackProject(subjectName)
	}
	var gen generatedProject
	if err := json.Unmarshal(data, &gen); err != nil || strings.TrimSpace(gen.Title) == "" {
		ps.log.Warn("project generation returned malformed payload, using fallback", "subject", subjectName)
		return fallbackProject(subjectName)
	}
	if gen.EstimatedHours <= 0 {
		gen.EstimatedHours = 30
	}
	return &gen
}

func fallbackProject(subjectName string) *generatedProject {
	return &generatedProject{
		Title:              fmt.Sprintf("%s - Practical Implementation", subjectName),
		Description:        fmt.Sprintf("Build a comprehensive project demonstrating key concepts from %s", subjectName),
		ProblemStatement:   fmt.Sprintf("Apply theoretical knowledge from %s to solve a real-world problem", subjectName),
		RequiredSkills:     []string{"Programming", "Problem Solving", "Documentation"},
		Deliverables:       []string{"Source Code", "Documentation", "Test Results"},
		EvaluationCriteria: []string{"Functionality", "Code Quality", "Documentation"},
		EstimatedHours:     30,
	}
}

func (ps *projectService) UpdateProject(ctx context.Context, userID, projectID uuid.UUID, updates map[string]interface{}) (*types.Project, error) {
	var result *types.Project
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := ps.loadOwnedProject(ctx, tx, userID, projectID)
		if err != nil {
			return err
		}
		oldStatus := project.Status

		allowed := map[string]bool{
			"title": true, "description": true, "problem_statement": true,
			"status": true, "completion_percentage": true, "github_url": true,
			"live_url": true, "difficulty_level": true, "estimated_hours": true,
			"actual_hours": true, "start_date": true, "end_date": true,
		}
		filtered := make(map[string]interface{}, len(updates))
		for k, v := range updates {
			if allowed[k] {
				filtered[k] = v
			}
		}
		if len(filtered) > 0 {
			filtered["updated_at"] = time.Now()
			if err := ps.projectRepo.Update(ctx, tx, projectID, filtered); err != nil {
				return fmt.Errorf("update project: %w", err)
			}
		}

		project, err = ps.loadOwnedProject(ctx, tx, userID, projectID)
		if err != nil {
			return err
		}

		if oldStatus != types.ProjectStatusCompleted && project.Status == types.ProjectStatusCompleted {
			if err := ps.cvService.RefreshFromProjects(ctx, tx, userID); err != nil {
				return fmt.Errorf("refresh cv: %w", err)
			}
		}

		result = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ps *projectService) DeleteProject(ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	if _, err := ps.loadOwnedProject(ctx, transaction, userID, projectID); err != nil {
		return err
	}
	return ps.projectRepo.SoftDeleteByIDs(ctx, transaction, []uuid.UUID{projectID})
}

func (ps *projectService) GetMilestones(ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID) ([]*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	if _, err := ps.loadOwnedProject(ctx, transaction, userID, projectID); err != nil {
		return nil, err
	}
	return ps.milestoneRepo.GetByProjectID(ctx, transaction, projectID)
}

func (ps *projectService) CreateMilestone(ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID, milestone *types.Milestone) (*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	if _, err := ps.loadOwnedProject(ctx, transaction, userID, projectID); err != nil {
		return nil, err
	}
	if milestone == nil || strings.TrimSpace(milestone.Title) == "" {
		return nil, fmt.Errorf("%w: milestone title is required", ErrInvalidState)
	}

	milestone.ID = uuid.New()
	milestone.UserID = userID
	milestone.ProjectID = &projectID

	created, err := ps.milestoneRepo.Create(ctx, transaction, []*types.Milestone{milestone})
	if err != nil {
		return nil, fmt.Errorf("create milestone: %w", err)
	}
	return created[0], nil
}

func (ps *projectService) CompleteMilestone(ctx context.Context, tx *gorm.DB, userID, milestoneID uuid.UUID) (*types.Milestone, error) {
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}

	milestones, err := ps.milestoneRepo.GetByIDs(ctx, transaction, []uuid.UUID{milestoneID})
	if err != nil {
		return nil, fmt.Errorf("load milestone: %w", err)
	}
	if len(milestones) == 0 || milestones[0] == nil || milestones[0].UserID != userID {
		return nil, fmt.Errorf("%w: milestone %s", ErrNotFound, milestoneID)
	}

	now := time.Now()
	if err := ps.milestoneRepo.Update(ctx, transaction, milestoneID, map[string]interface{}{
		"is_completed":   true,
		"completed_date": now,
	}); err != nil {
		return nil, fmt.Errorf("complete milestone: %w", err)
	}

	milestones[0].IsCompleted = true
	milestones[0].CompletedDate = &now
	return milestones[0], nil
}

func (ps *projectService) loadOwnedProject(ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID) (*types.Project, error) {
	projects, err := ps.projectRepo.GetByIDs(ctx, tx, []uuid.UUID{projectID})
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if len(projects) == 0 || projects[0] == nil || projects[0].UserID != userID {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	return projects[0], nil
}
