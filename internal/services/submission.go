package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/clients/gcp"
	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

// Content types accepted for documentation uploads. Anything else is
// rejected before any state mutation happens.
var acceptedDocumentationTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/msword": true,
}

type SubmissionInput struct {
	Task           string
	RepositoryLink string
	Filename       string
	ContentType    string
	File           io.Reader
}

type SubmissionResult struct {
	Subject    *types.Subject    `json:"subject"`
	Submission *types.Submission `json:"submission"`
	Project    *types.Project    `json:"project"`
}

type SubmissionService interface {
	// FinalizeSubmission records the documentation upload, forces the subject
	// to completed with progress 100 and spawns a completed Project, all in
	// one transaction.
	FinalizeSubmission(ctx context.Context, userID, subjectID uuid.UUID, input *SubmissionInput) (*SubmissionResult, error)
}

type submissionService struct {
	db             *gorm.DB
	log            *logger.Logger
	subjectRepo    repos.SubjectRepo
	submissionRepo repos.SubmissionRepo
	projectRepo    repos.ProjectRepo
	bucketService  gcp.BucketService
}

func NewSubmissionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	subjectRepo repos.SubjectRepo,
	submissionRepo repos.SubmissionRepo,
	projectRepo repos.ProjectRepo,
	bucketService gcp.BucketService,
) SubmissionService {
	serviceLog := baseLog.With("service", "SubmissionService")
	return &submissionService{
		db:             db,
		log:            serviceLog,
		subjectRepo:    subjectRepo,
		submissionRepo: submissionRepo,
		projectRepo:    projectRepo,
		bucketService:  bucketService,
	}
}

func (ss *submissionService) FinalizeSubmission(ctx context.Context, userID, subjectID uuid.UUID, input *SubmissionInput) (*SubmissionResult, error) {
	if input == nil || strings.TrimSpace(input.Task) == "" {
		return nil, fmt.Errorf("%w: submission task text is required", ErrInvalidState)
	}
	if !acceptedDocumentationTypes[input.ContentType] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, input.ContentType)
	}

	// Upload before the transaction; on rollback the orphan object is
	// deleted best-effort.
	var docKey string
	if ss.bucketService != nil && input.File != nil {
		docKey = fmt.Sprintf("documentation/%s/%d_%s", subjectID.String(), time.Now().UnixNano(), input.Filename)
		if err := ss.bucketService.UploadFile(ctx, gcp.BucketCategoryDocumentation, docKey, input.ContentType, input.File); err != nil {
			return nil, fmt.Errorf("upload documentation: %w", err)
		}
	}

	var result *SubmissionResult
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subjects, err := ss.subjectRepo.GetByIDs(ctx, tx, []uuid.UUID{subjectID})
		if err != nil {
			return fmt.Errorf("load subject: %w", err)
		}
		if len(subjects) == 0 || subjects[0] == nil || subjects[0].UserID != userID {
			return fmt.Errorf("%w: subject %s", ErrNotFound, subjectID)
		}
		subject := subjects[0]

		now := time.Now()
		submission := &types.Submission{
			ID:                    uuid.New(),
			SubjectID:             subject.ID,
			Task:                  input.Task,
			RepositoryLink:        input.RepositoryLink,
			DocumentationFilename: input.Filename,
			DocumentationKey:      docKey,
			SubmittedAt:           now,
		}
		if _, err := ss.submissionRepo.Create(ctx, tx, []*types.Submission{submission}); err != nil {
			return fmt.Errorf("create submission: %w", err)
		}

		// Submission always forces full completion regardless of how many
		// concepts are learned.
		if err := ss.subjectRepo.Update(ctx, tx, subject.ID, map[string]interface{}{
			"documentation_submitted": true,
			"progress":                100,
			"status":                  types.SubjectStatusCompleted,
			"updated_at":              now,
		}); err != nil {
			return fmt.Errorf("complete subject: %w", err)
		}

		startDate := subject.CreatedAt
		endDate := now
		project := &types.Project{
			ID:                   uuid.New(),
			UserID:               userID,
			Title:                fmt.Sprintf("%s Project", subject.Name),
			Description:          input.Task,
			ProblemStatement:     input.Task,
			GithubURL:            input.RepositoryLink,
			Status:               types.ProjectStatusCompleted,
			CompletionPercentage: 100,
			StartDate:            &startDate,
			EndDate:              &endDate,
		}
		if _, err := ss.projectRepo.Create(ctx, tx, []*types.Project{project}); err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		subject.DocumentationSubmitted = true
		subject.Progress = 100
		subject.Status = types.SubjectStatusCompleted
		result = &SubmissionResult{Subject: subject, Submission: submission, Project: project}
		return nil
	})
	if err != nil {
		if docKey != "" && ss.bucketService != nil {
			if delErr := ss.bucketService.DeleteFile(ctx, gcp.BucketCategoryDocumentation, docKey); delErr != nil {
				ss.log.Warn("failed to delete orphaned documentation object", "key", docKey, "error", delErr)
			}
		}
		return nil, err
	}
	return result, nil
}
