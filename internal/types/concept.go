package types

import (
	"time"

	"github.com/google/uuid"
)

// Concept rows are created in batches of exactly five per subject; Seq is the
// concept id exposed to clients, 1-based and unique within the subject.
type Concept struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"-"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_subject_seq,unique" json:"subject_id"`
	Subject   *Subject  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubjectID;references:ID" json:"subject,omitempty"`
	Seq       int       `gorm:"column:seq;not null;index:idx_subject_seq,unique" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Learned   bool      `gorm:"column:learned;not null;default:false" json:"learned"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Concept) TableName() string { return "concept" }
