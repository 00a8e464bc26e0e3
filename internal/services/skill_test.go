package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

func newSkillFixture(t *testing.T) (*gorm.DB, SkillService) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc := NewSkillService(db, log, repos.NewSkillRepo(db, log))
	return db, svc
}

func TestCreateSkillDedupes(t *testing.T) {
	db, svc := newSkillFixture(t)
	user := createTestUser(t, db)

	first, err := svc.CreateSkill(context.Background(), nil, user.ID, &types.Skill{Name: "Go"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.TargetLevel != defaultTargetLevel {
		t.Fatalf("target level = %v, want default %v", first.TargetLevel, defaultTargetLevel)
	}

	// Same name returns the existing row instead of a duplicate.
	second, err := svc.CreateSkill(context.Background(), nil, user.ID, &types.Skill{Name: "Go"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate skill row created")
	}

	var count int64
	if err := db.Model(&types.Skill{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count skills: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d skill rows, want 1", count)
	}
}

func TestCreateSkillRequiresName(t *testing.T) {
	db, svc := newSkillFixture(t)
	user := createTestUser(t, db)

	_, err := svc.CreateSkill(context.Background(), nil, user.ID, &types.Skill{Name: " "})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestUpdateProficiency(t *testing.T) {
	db, svc := newSkillFixture(t)
	user := createTestUser(t, db)
	skill := createTestSkill(t, db, user.ID, "SQL")

	updated, err := svc.UpdateProficiency(context.Background(), nil, user.ID, skill.ID, 45)
	if err != nil {
		t.Fatalf("UpdateProficiency: %v", err)
	}
	if updated.ProficiencyLevel != 45 {
		t.Fatalf("proficiency = %v, want 45", updated.ProficiencyLevel)
	}
	if updated.AcquiredDate != nil {
		t.Fatalf("acquired date set below target")
	}

	// Hitting the target stamps the acquisition date once.
	updated, err = svc.UpdateProficiency(context.Background(), nil, user.ID, skill.ID, 85)
	if err != nil {
		t.Fatalf("UpdateProficiency above target: %v", err)
	}
	if updated.AcquiredDate == nil {
		t.Fatalf("acquired date not set at target")
	}
	firstAcquired := *updated.AcquiredDate

	updated, err = svc.UpdateProficiency(context.Background(), nil, user.ID, skill.ID, 95)
	if err != nil {
		t.Fatalf("UpdateProficiency again: %v", err)
	}
	if updated.AcquiredDate == nil || !updated.AcquiredDate.Equal(firstAcquired) {
		t.Fatalf("acquired date rewritten: %v vs %v", updated.AcquiredDate, firstAcquired)
	}
}

func TestUpdateProficiencyClamps(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{name: "below range", input: -10, want: 0},
		{name: "above range", input: 150, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, svc := newSkillFixture(t)
			user := createTestUser(t, db)
			skill := createTestSkill(t, db, user.ID, "SQL")

			updated, err := svc.UpdateProficiency(context.Background(), nil, user.ID, skill.ID, tt.input)
			if err != nil {
				t.Fatalf("UpdateProficiency: %v", err)
			}
			if updated.ProficiencyLevel != tt.want {
				t.Fatalf("proficiency = %v, want %v", updated.ProficiencyLevel, tt.want)
			}
		})
	}
}

func TestDeleteSkillEnforcesOwnership(t *testing.T) {
	db, svc := newSkillFixture(t)
	owner := createTestUser(t, db)
	intruder := createTestUser(t, db)
	skill := createTestSkill(t, db, owner.ID, "SQL")

	if err := svc.DeleteSkill(context.Background(), nil, intruder.ID, skill.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete as intruder: got %v, want ErrNotFound", err)
	}
	if err := svc.DeleteSkill(context.Background(), nil, owner.ID, skill.ID); err != nil {
		t.Fatalf("delete as owner: %v", err)
	}
	skills, err := svc.GetSkills(context.Background(), nil, owner.ID)
	if err != nil {
		t.Fatalf("GetSkills: %v", err)
	}
	if len(skills) != 0 {
		t.Fatalf("deleted skill still listed")
	}
}
