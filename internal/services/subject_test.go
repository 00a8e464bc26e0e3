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

func newSubjectFixture(t *testing.T, completion CompletionClient) (*gorm.DB, SubjectService) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc := NewSubjectService(db, log, repos.NewSubjectRepo(db, log), repos.NewConceptRepo(db, log), completion)
	return db, svc
}

func TestCreateSubjectRequiresName(t *testing.T) {
	db, svc := newSubjectFixture(t, &fakeCompletion{})
	user := createTestUser(t, db)

	_, err := svc.CreateSubject(context.Background(), nil, user.ID, &types.Subject{Name: "   "})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestCreateSubjectRecreateGuard(t *testing.T) {
	db, svc := newSubjectFixture(t, &fakeCompletion{})
	user := createTestUser(t, db)

	first, err := svc.CreateSubject(context.Background(), nil, user.ID, &types.Subject{Name: "Linear Algebra"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	// A second run of the same name is blocked while the first is open.
	_, err = svc.CreateSubject(context.Background(), nil, user.ID, &types.Subject{Name: "Linear Algebra"})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("duplicate create: got %v, want ErrInvalidState", err)
	}

	if err := db.Model(&types.Subject{}).Where("id = ?", first.ID).
		Update("status", types.SubjectStatusCompleted).Error; err != nil {
		t.Fatalf("complete first subject: %v", err)
	}

	second, err := svc.CreateSubject(context.Background(), nil, user.ID, &types.Subject{Name: "Linear Algebra"})
	if err != nil {
		t.Fatalf("create after completion: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("re-create returned the old row")
	}
	if second.Status != types.SubjectStatusInProgress || second.Progress != 0 {
		t.Fatalf("re-created subject not fresh: status=%s progress=%d", second.Status, second.Progress)
	}
}

func TestCreateSubjectIgnoresClientOwnedFields(t *testing.T) {
	db, svc := newSubjectFixture(t, &fakeCompletion{})
	user := createTestUser(t, db)

	created, err := svc.CreateSubject(context.Background(), nil, user.ID, &types.Subject{
		Name:                   "Operating Systems",
		Status:                 types.SubjectStatusCompleted,
		Progress:               90,
		DocumentationSubmitted: true,
		GeneratedTask:          "smuggled task",
	})
	if err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}
	if created.Status != types.SubjectStatusInProgress {
		t.Fatalf("status = %s, want in_progress", created.Status)
	}
	if created.Progress != 0 || created.DocumentationSubmitted || created.GeneratedTask != "" {
		t.Fatalf("client-owned fields leaked through: %+v", created)
	}
}

func TestUpdateSubjectWhitelist(t *testing.T) {
	db, svc := newSubjectFixture(t, &fakeCompletion{})
	user := createTestUser(t, db)
	subject := createTestSubject(t, db, user.ID, "Statistics")

	updated, err := svc.UpdateSubject(context.Background(), nil, user.ID, subject.ID, map[string]interface{}{
		"name":     "Applied Statistics",
		"credits":  6,
		"progress": 95,
		"status":   types.SubjectStatusCompleted,
	})
	if err != nil {
		t.Fatalf("UpdateSubject: %v", err)
	}
	if updated.Name != "Applied Statistics" || updated.Credits != 6 {
		t.Fatalf("whitelisted fields not applied: %+v", updated)
	}
	if updated.Progress != 0 || updated.Status != types.SubjectStatusInProgress {
		t.Fatalf("protected fields were overwritten: %+v", updated)
	}
}

func TestGenerateTaskReturnsStoredTask(t *testing.T) {
	fake := &fakeCompletion{textResponse: "should not be used"}
	db, svc := newSubjectFixture(t, fake)
	user := createTestUser(t, db)
	subject := createTestSubject(t, db, user.ID, "Robotics")

	if err := db.Model(&types.Subject{}).Where("id = ?", subject.ID).
		Update("generated_task", "Existing assignment text").Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	task, err := svc.GenerateTask(context.Background(), nil, user.ID, subject.ID)
	if err != nil {
		t.Fatalf("GenerateTask: %v", err)
	}
	if task != "Existing assignment text" {
		t.Fatalf("task = %q, want stored text", task)
	}
	if fake.textCalls != 0 {
		t.Fatalf("completion was called %d times for a stored task", fake.textCalls)
	}
}

func TestGenerateTaskPersistsFreshTask(t *testing.T) {
	fake := &fakeCompletion{textResponse: "  Build a line-following robot.  "}
	db, svc := newSubjectFixture(t, fake)
	user := createTestUser(t, db)
	subject := createTestSubject(t, db, user.ID, "Robotics")

	task, err := svc.GenerateTask(context.Background(), nil, user.ID, subject.ID)
	if err != nil {
		t.Fatalf("GenerateTask: %v", err)
	}
	if task != "Build a line-following robot." {
		t.Fatalf("task = %q", task)
	}
	if fake.textCalls != 1 {
		t.Fatalf("completion called %d times, want 1", fake.textCalls)
	}

	// Second call serves the persisted task.
	again, err := svc.GenerateTask(context.Background(), nil, user.ID, subject.ID)
	if err != nil {
		t.Fatalf("second GenerateTask: %v", err)
	}
	if again != task {
		t.Fatalf("second call returned %q, want %q", again, task)
	}
	if fake.textCalls != 1 {
		t.Fatalf("completion re-called for a stored task")
	}
}

func TestGenerateTaskFallsBack(t *testing.T) {
	fake := &fakeCompletion{textErr: errors.New("upstream down")}
	db, svc := newSubjectFixture(t, fake)
	user := createTestUser(t, db)
	subject := createTestSubject(t, db, user.ID, "Databases")

	task, err := svc.GenerateTask(context.Background(), nil, user.ID, subject.ID)
	if err != nil {
		t.Fatalf("GenerateTask: %v", err)
	}
	if !strings.Contains(task, "Project: Comprehensive Databases Application") {
		t.Fatalf("fallback task missing header: %q", task)
	}
}

func TestDeleteSubjectEnforcesOwnership(t *testing.T) {
	db, svc := newSubjectFixture(t, &fakeCompletion{})
	owner := createTestUser(t, db)
	intruder := createTestUser(t, db)
	subject := createTestSubject(t, db, owner.ID, "Economics")

	if err := svc.DeleteSubject(context.Background(), nil, intruder.ID, subject.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete as intruder: got %v, want ErrNotFound", err)
	}
	if err := svc.DeleteSubject(context.Background(), nil, owner.ID, subject.ID); err != nil {
		t.Fatalf("delete as owner: %v", err)
	}
	if _, err := svc.GetSubject(context.Background(), nil, owner.ID, subject.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted subject still readable: %v", err)
	}
}
