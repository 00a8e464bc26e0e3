package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Opportunity struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title          string         `gorm:"column:title;not null" json:"title"`
	Company        string         `gorm:"column:company" json:"company"`
	Location       string         `gorm:"column:location" json:"location"`
	Type           string         `gorm:"column:type" json:"type"`
	Description    string         `gorm:"column:description;type:text" json:"description"`
	RequiredSkills datatypes.JSON `gorm:"column:required_skills;type:jsonb" json:"required_skills"`
	MatchScore     float64        `gorm:"column:match_score;not null;default:0" json:"match_score"`
	URL            string         `gorm:"column:url" json:"url"`
	Applied        bool           `gorm:"column:applied;not null;default:false" json:"applied"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Opportunity) TableName() string { return "opportunity" }
