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

type SubjectService interface {
	CreateSubject(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subject *types.Subject) (*types.Subject, error)
	GetSubjects(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Subject, error)
	GetSubject(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) (*types.Subject, error)
	UpdateSubject(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID, updates map[string]interface{}) (*types.Subject, error)
	DeleteSubject(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) error
	// GenerateTask returns the subject's stored project task, asking the
	// completion service for a fresh one only when none exists yet.
	GenerateTask(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) (string, error)
}

type subjectService struct {
	db          *gorm.DB
	log         *logger.Logger
	subjectRepo repos.SubjectRepo
	conceptRepo repos.ConceptRepo
	completion  CompletionClient
}

func NewSubjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	subjectRepo repos.SubjectRepo,
	conceptRepo repos.ConceptRepo,
	completion CompletionClient,
) SubjectService {
	serviceLog := baseLog.With("service", "SubjectService")
	return &subjectService{
		db:          db,
		log:         serviceLog,
		subjectRepo: subjectRepo,
		conceptRepo: conceptRepo,
		completion:  completion,
	}
}

func (ss *subjectService) CreateSubject(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subject *types.Subject) (*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	if subject == nil || strings.TrimSpace(subject.Name) == "" {
		return nil, fmt.Errorf("%w: subject name is required", ErrInvalidState)
	}
	subject.Name = strings.TrimSpace(subject.Name)

	// Re-creating a subject name is only allowed once the prior run is done.
	existing, err := ss.subjectRepo.GetByUserAndName(ctx, transaction, userID, subject.Name)
	if err != nil {
		return nil, fmt.Errorf("check existing subject: %w", err)
	}
	for _, prior := range existing {
		if prior != nil && prior.Status != types.SubjectStatusCompleted {
			return nil, fmt.Errorf("%w: subject %q is still in progress", ErrInvalidState, subject.Name)
		}
	}

	subject.ID = uuid.New()
	subject.UserID = userID
	subject.Status = types.SubjectStatusInProgress
	subject.Progress = 0
	subject.DocumentationSubmitted = false
	subject.GeneratedTask = ""

	created, err := ss.subjectRepo.Create(ctx, transaction, []*types.Subject{subject})
	if err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return created[0], nil
}

func (ss *subjectService) GetSubjects(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	return ss.subjectRepo.GetByUserID(ctx, transaction, userID)
}

func (ss *subjectService) GetSubject(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) (*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	return ss.loadOwnedSubject(ctx, transaction, userID, subjectID)
}

func (ss *subjectService) UpdateSubject(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID, updates map[string]interface{}) (*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	if _, err := ss.loadOwnedSubject(ctx, transaction, userID, subjectID); err != nil {
		return nil, err
	}

	// Progress and status are owned by the toggle and submission flows.
	allowed := map[string]bool{
		"name": true, "code": true, "semester": true, "year": true,
		"credits": true, "description": true,
	}
	filtered := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) > 0 {
		filtered["updated_at"] = time.Now()
		if err := ss.subjectRepo.Update(ctx, transaction, subjectID, filtered); err != nil {
			return nil, fmt.Errorf("update subject: %w", err)
		}
	}
	return ss.loadOwnedSubject(ctx, transaction, userID, subjectID)
}

func (ss *subjectService) DeleteSubject(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	if _, err := ss.loadOwnedSubject(ctx, transaction, userID, subjectID); err != nil {
		return err
	}
	return ss.subjectRepo.SoftDeleteByIDs(ctx, transaction, []uuid.UUID{subjectID})
}

func (ss *subjectService) GenerateTask(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) (string, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	subject, err := ss.loadOwnedSubject(ctx, transaction, userID, subjectID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(subject.GeneratedTask) != "" {
		return subject.GeneratedTask, nil
	}

	concepts, err := ss.conceptRepo.GetBySubjectID(ctx, transaction, subject.ID)
	if err != nil {
		return "", fmt.Errorf("load concepts: %w", err)
	}
	names := make([]string, 0, len(concepts))
	for _, c := range concepts {
		names = append(names, c.Name)
	}

	task := ss.taskFromAI(ctx, subject.Name, names)

	if err := ss.subjectRepo.Update(ctx, transaction, subject.ID, map[string]interface{}{
		"generated_task": task,
		"updated_at":     time.Now(),
	}); err != nil {
		return "", fmt.Errorf("persist task: %w", err)
	}
	return task, nil
}

func (ss *subjectService) taskFromAI(ctx context.Context, subjectName string, conceptNames []string) string {
	var b strings.Builder
	for _, c := range conceptNames {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	conceptsText := strings.TrimRight(b.String(), "\n")

	system := "You are an experienced professor who creates engaging, practical project assignments."
	user := fmt.Sprintf(`You are a professor creating a comprehensive project assignment.

Subject: %s
Key Concepts Covered:
%s

Create a detailed project task that:
1. Covers ALL the concepts listed above
2. Is practical and hands-on
3. Takes 2-4 weeks to complete
4. Produces a deliverable (code, report, analysis, etc.)
5. Is challenging but achievable for students

Write a clear, detailed project description (200-300 words) that explains:
- What students will build/create
- Which concepts will be applied
- Expected deliverables
- Learning outcomes

Return ONLY the project description text, no JSON.`, subjectName, conceptsText)

	text, err := ss.completion.GenerateText(ctx, system, user)
	if err != nil || strings.TrimSpace(text) == "" {
		ss.log.Warn("task generation degraded, using fallback", "subject", subjectName, "error", err)
		return fallbackTask(subjectName, conceptsText)
	}
	return strings.TrimSpace(text)
}

func fallbackTask(subjectName, conceptsText string) string {
	return fmt.Sprintf(`Project: Comprehensive %s Application

Build a complete project that demonstrates your mastery of the key concepts in %s:
%s

Your project should integrate all these concepts into a cohesive, working solution. You may choose to create a software application, research paper, case study analysis, or practical demonstration depending on the nature of the subject.

Deliverables:
- Complete implementation or documentation
- Technical report explaining your approach
- Demonstration of each concept's application

This project will showcase your understanding and ability to apply %s principles in real-world scenarios.`, subjectName, subjectName, conceptsText, subjectName)
}

func (ss *subjectService) loadOwnedSubject(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) (*types.Subject, error) {
	subjects, err := ss.subjectRepo.GetByIDs(ctx, tx, []uuid.UUID{subjectID})
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if len(subjects) == 0 || subjects[0] == nil || subjects[0].UserID != userID {
		return nil, fmt.Errorf("%w: subject %s", ErrNotFound, subjectID)
	}
	return subjects[0], nil
}
