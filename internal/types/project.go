package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProjectStatusNotStarted = "not_started"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusArchived   = "archived"
)

type Project struct {
	ID                   uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID               uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User                 *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title                string         `gorm:"column:title;not null" json:"title"`
	Description          string         `gorm:"column:description;type:text" json:"description"`
	ProblemStatement     string         `gorm:"column:problem_statement;type:text" json:"problem_statement"`
	RequiredSkills       datatypes.JSON `gorm:"column:required_skills;type:jsonb" json:"required_skills"`
	Deliverables         datatypes.JSON `gorm:"column:deliverables;type:jsonb" json:"deliverables"`
	EvaluationCriteria   datatypes.JSON `gorm:"column:evaluation_criteria;type:jsonb" json:"evaluation_criteria"`
	Status               string         `gorm:"column:status;not null;default:'not_started'" json:"status"`
	GithubURL            string         `gorm:"column:github_url" json:"github_url"`
	LiveURL              string         `gorm:"column:live_url" json:"live_url"`
	CompletionPercentage int            `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`
	DifficultyLevel      string         `gorm:"column:difficulty_level" json:"difficulty_level"`
	EstimatedHours       int            `gorm:"column:estimated_hours" json:"estimated_hours"`
	ActualHours          int            `gorm:"column:actual_hours" json:"actual_hours"`
	StartDate            *time.Time     `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate              *time.Time     `gorm:"column:end_date" json:"end_date,omitempty"`
	CreatedAt            time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }
