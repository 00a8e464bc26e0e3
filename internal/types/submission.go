package types

import (
	"time"

	"github.com/google/uuid"
)

// Submission is append-only; rows are never updated or deleted once written.
type Submission struct {
	ID                    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubjectID             uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	Subject               *Subject  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubjectID;references:ID" json:"subject,omitempty"`
	Task                  string    `gorm:"column:task;type:text;not null" json:"task"`
	RepositoryLink        string    `gorm:"column:repository_link" json:"repository_link"`
	DocumentationFilename string    `gorm:"column:documentation_filename" json:"documentation_filename"`
	DocumentationKey      string    `gorm:"column:documentation_key" json:"documentation_key"`
	SubmittedAt           time.Time `gorm:"column:submitted_at;not null" json:"submitted_at"`
	CreatedAt             time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Submission) TableName() string { return "submission" }
