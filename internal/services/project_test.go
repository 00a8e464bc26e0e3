package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

func newProjectFixture(t *testing.T, completion CompletionClient) (*gorm.DB, ProjectService) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	cvService := NewCVService(db, log,
		repos.NewUserRepo(db, log),
		repos.NewProjectRepo(db, log),
		repos.NewSkillRepo(db, log),
		repos.NewCVRepo(db, log),
		completion)
	svc := NewProjectService(db, log,
		repos.NewProjectRepo(db, log),
		repos.NewSubjectRepo(db, log),
		repos.NewMilestoneRepo(db, log),
		cvService,
		completion)
	return db, svc
}

func TestGenerateProjectFromCompletion(t *testing.T) {
	fake := &fakeCompletion{
		jsonResponse: map[string]any{
			"title":               "Inventory Tracker",
			"description":         "A small warehouse inventory system.",
			"problem_statement":   "Manual stock counts are error prone.",
			"required_skills":     []any{"Go", "SQL"},
			"deliverables":        []any{"Source Code", "Report"},
			"evaluation_criteria": []any{"Correctness"},
			"estimated_hours":     float64(25),
		},
	}
	db, svc := newProjectFixture(t, fake)
	user := createTestUser(t, db)
	subject := createTestSubject(t, db, user.ID, "Databases")

	project, err := svc.GenerateProject(context.Background(), user.ID, subject.ID)
	if err != nil {
		t.Fatalf("GenerateProject: %v", err)
	}
	if project.Title != "Inventory Tracker" {
		t.Fatalf("title = %q", project.Title)
	}
	if project.Status != types.ProjectStatusNotStarted {
		t.Fatalf("status = %q, want not_started", project.Status)
	}
	if project.EstimatedHours != 25 {
		t.Fatalf("estimated hours = %d, want 25", project.EstimatedHours)
	}
	if !strings.Contains(string(project.RequiredSkills), "SQL") {
		t.Fatalf("required skills = %s", project.RequiredSkills)
	}
	if project.DifficultyLevel != "Intermediate" {
		t.Fatalf("difficulty = %q", project.DifficultyLevel)
	}
}

func TestGenerateProjectFallsBack(t *testing.T) {
	fake := &fakeCompletion{jsonErr: errors.New("upstream down")}
	db, svc := newProjectFixture(t, fake)
	user := createTestUser(t, db)
	subject := createTestSubject(t, db, user.ID, "Databases")

	project, err := svc.GenerateProject(context.Background(), user.ID, subject.ID)
	if err != nil {
		t.Fatalf("GenerateProject: %v", err)
	}
	if project.Title != "Databases - Practical Implementation" {
		t.Fatalf("fallback title = %q", project.Title)
	}
	if project.EstimatedHours != 30 {
		t.Fatalf("fallback hours = %d, want 30", project.EstimatedHours)
	}
}

func TestGenerateProjectEnforcesOwnership(t *testing.T) {
	db, svc := newProjectFixture(t, &fakeCompletion{})
	owner := createTestUser(t, db)
	intruder := createTestUser(t, db)
	subject := createTestSubject(t, db, owner.ID, "Databases")

	_, err := svc.GenerateProject(context.Background(), intruder.ID, subject.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUpdateProjectCompletionRefreshesCV(t *testing.T) {
	db, svc := newProjectFixture(t, &fakeCompletion{})
	user := createTestUser(t, db)

	project, err := svc.CreateProject(context.Background(), nil, user.ID, &types.Project{
		Title:  "Chat Server",
		Status: types.ProjectStatusInProgress,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	// A non-terminal update must not materialize a CV.
	if _, err := svc.UpdateProject(context.Background(), user.ID, project.ID, map[string]interface{}{
		"completion_percentage": 40,
	}); err != nil {
		t.Fatalf("progress update: %v", err)
	}
	var count int64
	if err := db.Model(&types.CV{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count cvs: %v", err)
	}
	if count != 0 {
		t.Fatalf("cv created before completion")
	}

	updated, err := svc.UpdateProject(context.Background(), user.ID, project.ID, map[string]interface{}{
		"status":                types.ProjectStatusCompleted,
		"completion_percentage": 100,
	})
	if err != nil {
		t.Fatalf("completion update: %v", err)
	}
	if updated.Status != types.ProjectStatusCompleted {
		t.Fatalf("status = %q", updated.Status)
	}

	var cv types.CV
	if err := db.First(&cv, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("cv not refreshed on completion: %v", err)
	}
	if !strings.Contains(string(cv.Projects), "Chat Server") {
		t.Fatalf("refreshed cv missing project: %s", cv.Projects)
	}
}

func TestUpdateProjectIgnoresUnknownFields(t *testing.T) {
	db, svc := newProjectFixture(t, &fakeCompletion{})
	user := createTestUser(t, db)
	other := createTestUser(t, db)

	project, err := svc.CreateProject(context.Background(), nil, user.ID, &types.Project{Title: "Chat Server"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	updated, err := svc.UpdateProject(context.Background(), user.ID, project.ID, map[string]interface{}{
		"user_id": other.ID,
		"title":   "Renamed Chat Server",
	})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.Title != "Renamed Chat Server" {
		t.Fatalf("title = %q", updated.Title)
	}
	if updated.UserID != user.ID {
		t.Fatalf("ownership was reassigned")
	}
}

func TestMilestoneLifecycle(t *testing.T) {
	db, svc := newProjectFixture(t, &fakeCompletion{})
	user := createTestUser(t, db)
	intruder := createTestUser(t, db)

	project, err := svc.CreateProject(context.Background(), nil, user.ID, &types.Project{Title: "Chat Server"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if _, err := svc.CreateMilestone(context.Background(), nil, user.ID, project.ID, &types.Milestone{Title: "  "}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("blank milestone: got %v, want ErrInvalidState", err)
	}

	milestone, err := svc.CreateMilestone(context.Background(), nil, user.ID, project.ID, &types.Milestone{
		Title:       "Wire protocol",
		Description: "Define message framing",
	})
	if err != nil {
		t.Fatalf("CreateMilestone: %v", err)
	}
	if milestone.ProjectID == nil || *milestone.ProjectID != project.ID {
		t.Fatalf("milestone not attached to project")
	}

	if _, err := svc.CompleteMilestone(context.Background(), nil, intruder.ID, milestone.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("complete as intruder: got %v, want ErrNotFound", err)
	}

	completed, err := svc.CompleteMilestone(context.Background(), nil, user.ID, milestone.ID)
	if err != nil {
		t.Fatalf("CompleteMilestone: %v", err)
	}
	if !completed.IsCompleted || completed.CompletedDate == nil {
		t.Fatalf("milestone not completed: %+v", completed)
	}

	listed, err := svc.GetMilestones(context.Background(), nil, user.ID, project.ID)
	if err != nil {
		t.Fatalf("GetMilestones: %v", err)
	}
	if len(listed) != 1 || !listed[0].IsCompleted {
		t.Fatalf("listed milestones wrong: %+v", listed)
	}
}
