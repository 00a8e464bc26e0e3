package types

import (
	"time"

	"github.com/google/uuid"
)

type Milestone struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ProjectID     *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Project       *Project   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Title         string     `gorm:"column:title;not null" json:"title"`
	Description   string     `gorm:"column:description;type:text" json:"description"`
	TargetDate    *time.Time `gorm:"column:target_date" json:"target_date,omitempty"`
	CompletedDate *time.Time `gorm:"column:completed_date" json:"completed_date,omitempty"`
	IsCompleted   bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Milestone) TableName() string { return "milestone" }
