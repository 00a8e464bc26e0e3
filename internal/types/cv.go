package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CV is a one-per-user denormalized snapshot rebuilt from completed projects
// and skills whenever either changes.
type CV struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Summary       string         `gorm:"column:summary;type:text" json:"summary"`
	Education     datatypes.JSON `gorm:"column:education;type:jsonb" json:"education"`
	Skills        datatypes.JSON `gorm:"column:skills;type:jsonb" json:"skills"`
	Projects      datatypes.JSON `gorm:"column:projects;type:jsonb" json:"projects"`
	FormattedText string         `gorm:"column:formatted_text;type:text" json:"formatted_text"`
	FormatType    string         `gorm:"column:format_type" json:"format_type"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (CV) TableName() string { return "cv" }
