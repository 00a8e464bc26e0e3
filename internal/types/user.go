package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email           string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Username        string         `gorm:"index;column:username" json:"username"`
	Password        string         `gorm:"not null;column:password" json:"-"`
	FullName        string         `gorm:"not null;column:full_name" json:"full_name"`
	DegreeProgram   string         `gorm:"column:degree_program" json:"degree_program"`
	CurrentYear     int            `gorm:"column:current_year" json:"current_year"`
	CurrentSemester int            `gorm:"column:current_semester" json:"current_semester"`
	CareerGoal      string         `gorm:"column:career_goal" json:"career_goal"`
	IsActive        bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	AvatarBucketKey string         `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key"`
	AvatarURL       string         `gorm:"column:avatar_url" json:"avatar_url"`
	AvatarColor     string         `gorm:"column:avatar_color" json:"avatar_color"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
