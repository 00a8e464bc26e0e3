package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubjectStatusInProgress = "in_progress"
	SubjectStatusCompleted  = "completed"
)

// Subject is one enrolled course. Concepts and Submissions hang off it as
// child rows; Progress is recomputed from those rows inside the same
// transaction that mutates them.
type Subject struct {
	ID                     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID                 uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User                   *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name                   string         `gorm:"column:name;not null" json:"name"`
	Code                   string         `gorm:"column:code" json:"code"`
	Semester               int            `gorm:"column:semester" json:"semester"`
	Year                   int            `gorm:"column:year" json:"year"`
	Credits                int            `gorm:"column:credits" json:"credits"`
	Description            string         `gorm:"column:description" json:"description"`
	Status                 string         `gorm:"column:status;not null;default:'in_progress'" json:"status"`
	Progress               int            `gorm:"column:progress;not null;default:0" json:"progress"`
	DocumentationSubmitted bool           `gorm:"column:documentation_submitted;not null;default:false" json:"documentation_submitted"`
	GeneratedTask          string         `gorm:"column:generated_task;type:text" json:"generated_task"`
	Concepts               []*Concept     `gorm:"foreignKey:SubjectID;references:ID" json:"concepts,omitempty"`
	Submissions            []*Submission  `gorm:"foreignKey:SubjectID;references:ID" json:"submissions,omitempty"`
	CreatedAt              time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Subject) TableName() string { return "subject" }
