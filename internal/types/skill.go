package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Skill may reference the subject it came from, but only weakly: deleting the
// subject nulls the reference instead of blocking.
type Skill struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SubjectID        *uuid.UUID     `gorm:"type:uuid;index" json:"subject_id,omitempty"`
	Subject          *Subject       `gorm:"constraint:OnDelete:SET NULL;foreignKey:SubjectID;references:ID" json:"subject,omitempty"`
	Name             string         `gorm:"column:name;not null" json:"name"`
	Category         string         `gorm:"column:category" json:"category"`
	ProficiencyLevel float64        `gorm:"column:proficiency_level;not null;default:0" json:"proficiency_level"`
	TargetLevel      float64        `gorm:"column:target_level" json:"target_level"`
	AcquiredDate     *time.Time     `gorm:"column:acquired_date" json:"acquired_date,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Skill) TableName() string { return "skill" }
