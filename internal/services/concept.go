package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

const conceptsPerSubject = 5

type ConceptService interface {
	// GenerateConcepts asks the completion service for five concept names and
	// replaces the subject's concept set with them. A prior set is always
	// overwritten; callers guard against accidental regeneration.
	GenerateConcepts(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) ([]*types.Concept, error)
	GetConcepts(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) ([]*types.Concept, error)
	// ToggleConcept flips the learned flag of the concept with the given
	// 1-based id and persists the recomputed subject progress in the same
	// transaction. Unknown ids return ErrConceptNotFound.
	ToggleConcept(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID, conceptID int) (*ToggleResult, error)
}

type ToggleResult struct {
	Concept  *types.Concept `json:"concept"`
	Progress int            `json:"progress"`
}

type conceptService struct {
	db          *gorm.DB
	log         *logger.Logger
	subjectRepo repos.SubjectRepo
	conceptRepo repos.ConceptRepo
	completion  CompletionClient
}

func NewConceptService(
	db *gorm.DB,
	baseLog *logger.Logger,
	subjectRepo repos.SubjectRepo,
	conceptRepo repos.ConceptRepo,
	completion CompletionClient,
) ConceptService {
	serviceLog := baseLog.With("service", "ConceptService")
	return &conceptService{
		db:          db,
		log:         serviceLog,
		subjectRepo: subjectRepo,
		conceptRepo: conceptRepo,
		completion:  completion,
	}
}

func (cs *conceptService) GenerateConcepts(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	subject, err := cs.loadOwnedSubject(ctx, transaction, userID, subjectID)
	if err != nil {
		return nil, err
	}

	names := cs.conceptNamesFromAI(ctx, subject.Name)

	now := time.Now()
	concepts := make([]*types.Concept, 0, conceptsPerSubject)
	for i, name := range names {
		concepts = append(concepts, &types.Concept{
			ID:        uuid.New(),
			SubjectID: subject.ID,
			Seq:       i + 1,
			Name:      name,
			Learned:   false,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if _, err := cs.conceptRepo.ReplaceForSubject(ctx, transaction, subject.ID, concepts); err != nil {
		cs.log.Error("ReplaceForSubject failed", "error", err, "subject_id", subject.ID)
		return nil, fmt.Errorf("replace concepts: %w", err)
	}

	// A fresh concept set means nothing is learned yet; keep the persisted
	// progress in step with the rows.
	newProgress := CalculateProgress(0, subject.DocumentationSubmitted)
	if err := cs.subjectRepo.Update(ctx, transaction, subject.ID, map[string]interface{}{
		"progress":   newProgress,
		"updated_at": now,
	}); err != nil {
		return nil, fmt.Errorf("persist progress: %w", err)
	}

	return concepts, nil
}

// conceptNamesFromAI returns exactly five names, substituting the generic
// fallback set when the completion service errors or returns a malformed
// payload.
func (cs *conceptService) conceptNamesFromAI(ctx context.Context, subjectName string) []string {
	if cs.completion == nil {
		return fallbackConceptNames(subjectName)
	}

	system := "You are an expert educator. Return only valid JSON."
	user := fmt.Sprintf(`Generate exactly 5 key fundamental concepts for the subject: %s

These should be:
- Core concepts every student must understand
- Practical and applicable
- Progressive in difficulty
- Essential for mastery

Return a JSON object of the form {"concepts": ["Concept 1", "Concept 2", "Concept 3", "Concept 4", "Concept 5"]}.`, subjectName)

	obj, err := cs.completion.GenerateJSON(ctx, system, user)
	if err != nil {
		cs.log.Warn("Concept generation degraded, using fallback concepts", "subject", subjectName, "error", err)
		return fallbackConceptNames(subjectName)
	}

	raw, ok := obj["concepts"].([]any)
	if !ok {
		cs.log.Warn("Concept generation returned malformed payload, using fallback concepts", "subject", subjectName)
		return fallbackConceptNames(subjectName)
	}
	names := make([]string, 0, conceptsPerSubject)
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	if len(names) < conceptsPerSubject {
		cs.log.Warn("Concept generation returned too few concepts, using fallback concepts",
			"subject", subjectName, "got", len(names))
		return fallbackConceptNames(subjectName)
	}
	return names[:conceptsPerSubject]
}

func fallbackConceptNames(subjectName string) []string {
	return []string{
		fmt.Sprintf("Introduction to %s", subjectName),
		fmt.Sprintf("Core principles of %s", subjectName),
		fmt.Sprintf("Advanced %s concepts", subjectName),
		fmt.Sprintf("Applications of %s", subjectName),
		fmt.Sprintf("%s best practices", subjectName),
	}
}

func (cs *conceptService) GetConcepts(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	if _, err := cs.loadOwnedSubject(ctx, transaction, userID, subjectID); err != nil {
		return nil, err
	}
	return cs.conceptRepo.GetBySubjectID(ctx, transaction, subjectID)
}

func (cs *conceptService) ToggleConcept(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID, conceptID int) (*ToggleResult, error) {
	var result *ToggleResult

	run := func(transaction *gorm.DB) error {
		subject, err := cs.loadOwnedSubject(ctx, transaction, userID, subjectID)
		if err != nil {
			return err
		}

		concept, err := cs.conceptRepo.GetBySubjectAndSeq(ctx, transaction, subject.ID, conceptID)
		if err != nil {
			return fmt.Errorf("load concept: %w", err)
		}
		if concept == nil {
			return fmt.Errorf("%w: subject %s has no concept %d", ErrConceptNotFound, subject.ID, conceptID)
		}

		concept.Learned = !concept.Learned
		if err := cs.conceptRepo.SetLearned(ctx, transaction, concept.ID, concept.Learned); err != nil {
			return fmt.Errorf("set learned: %w", err)
		}

		learned, err := cs.conceptRepo.CountLearnedBySubjectID(ctx, transaction, subject.ID)
		if err != nil {
			return fmt.Errorf("count learned: %w", err)
		}

		progress := CalculateProgress(int(learned), subject.DocumentationSubmitted)
		if err := cs.subjectRepo.Update(ctx, transaction, subject.ID, map[string]interface{}{
			"progress":   progress,
			"updated_at": time.Now(),
		}); err != nil {
			return fmt.Errorf("persist progress: %w", err)
		}

		result = &ToggleResult{Concept: concept, Progress: progress}
		return nil
	}

	var err error
	if tx != nil {
		err = run(tx)
	} else {
		err = cs.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
			return run(transaction)
		})
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (cs *conceptService) loadOwnedSubject(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) (*types.Subject, error) {
	subjects, err := cs.subjectRepo.GetByIDs(ctx, tx, []uuid.UUID{subjectID})
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if len(subjects) == 0 || subjects[0] == nil || subjects[0].UserID != userID {
		return nil, fmt.Errorf("%w: subject %s", ErrNotFound, subjectID)
	}
	return subjects[0], nil
}
