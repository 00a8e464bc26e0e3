package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

func newRoadmapFixture(t *testing.T, completion CompletionClient) (*gorm.DB, RoadmapService) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc := NewRoadmapService(db, log,
		repos.NewUserRepo(db, log),
		repos.NewSubjectRepo(db, log),
		repos.NewSkillRepo(db, log),
		completion, nil)
	return db, svc
}

func loadSkillsByName(t *testing.T, db *gorm.DB, userID uuid.UUID) map[string]*types.Skill {
	t.Helper()
	var rows []*types.Skill
	if err := db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		t.Fatalf("load skills: %v", err)
	}
	byName := make(map[string]*types.Skill, len(rows))
	for _, row := range rows {
		if _, dup := byName[row.Name]; dup {
			t.Fatalf("duplicate skill row for %q", row.Name)
		}
		byName[row.Name] = row
	}
	return byName
}

func TestGenerateRoadmapRequiresSubjects(t *testing.T) {
	db, svc := newRoadmapFixture(t, &fakeCompletion{})
	user := createTestUser(t, db)

	_, err := svc.GenerateRoadmap(context.Background(), nil, user.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestGenerateRoadmapReconcilesSkills(t *testing.T) {
	fake := &fakeCompletion{
		jsonResponse: map[string]any{
			"roadmap": []any{
				map[string]any{
					"subject": "Databases",
					"skills": []any{
						map[string]any{
							"name":            "SQL",
							"category":        "Technical",
							"target_level":    float64(90),
							"estimated_weeks": float64(6),
							"why_important":   "Core query language",
						},
						map[string]any{
							"name": "Data Modeling",
						},
					},
				},
				map[string]any{
					"subject": "Cloud Computing",
					"skills": []any{
						map[string]any{
							"name":         "SQL",
							"target_level": float64(50),
						},
						map[string]any{
							"name":         "Problem Solving",
							"target_level": float64(85),
						},
					},
				},
			},
		},
	}
	db, svc := newRoadmapFixture(t, fake)
	user := createTestUser(t, db)
	databases := createTestSubject(t, db, user.ID, "Databases")

	// Pre-existing skill must survive reconciliation untouched.
	existing := &types.Skill{
		ID:               uuid.New(),
		UserID:           user.ID,
		Name:             "Problem Solving",
		Category:         "Soft",
		ProficiencyLevel: 40,
		TargetLevel:      70,
	}
	if err := db.Create(existing).Error; err != nil {
		t.Fatalf("seed skill: %v", err)
	}

	result, err := svc.GenerateRoadmap(context.Background(), nil, user.ID)
	if err != nil {
		t.Fatalf("GenerateRoadmap: %v", err)
	}
	if result.Degraded {
		t.Fatalf("result unexpectedly degraded: %s", result.DegradedReason)
	}
	if result.TotalSkills != 4 {
		t.Fatalf("TotalSkills = %d, want 4", result.TotalSkills)
	}
	if result.EstimatedWeeks != 18 {
		t.Fatalf("EstimatedWeeks = %d, want 18", result.EstimatedWeeks)
	}
	if result.CreatedSkills != 2 {
		t.Fatalf("CreatedSkills = %d, want 2", result.CreatedSkills)
	}

	byName := loadSkillsByName(t, db, user.ID)
	if len(byName) != 3 {
		t.Fatalf("got %d skill rows, want 3", len(byName))
	}

	sql := byName["SQL"]
	if sql == nil {
		t.Fatalf("SQL skill not created")
	}
	if sql.ProficiencyLevel != 0 {
		t.Fatalf("new skill proficiency = %v, want 0", sql.ProficiencyLevel)
	}
	if sql.TargetLevel != 90 {
		t.Fatalf("SQL target = %v, want 90 from the first proposal", sql.TargetLevel)
	}
	if sql.SubjectID == nil || *sql.SubjectID != databases.ID {
		t.Fatalf("SQL not attached to the Databases subject: %v", sql.SubjectID)
	}

	modeling := byName["Data Modeling"]
	if modeling == nil {
		t.Fatalf("Data Modeling skill not created")
	}
	if modeling.Category != "Technical" || modeling.TargetLevel != 80 {
		t.Fatalf("defaults not applied: category=%q target=%v", modeling.Category, modeling.TargetLevel)
	}

	solving := byName["Problem Solving"]
	if solving == nil || solving.ID != existing.ID {
		t.Fatalf("existing skill was replaced")
	}
	if solving.ProficiencyLevel != 40 || solving.TargetLevel != 70 || solving.Category != "Soft" {
		t.Fatalf("existing skill was mutated: %+v", solving)
	}
}

func TestGenerateRoadmapDegradedFallback(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeCompletion
	}{
		{name: "completion error", fake: &fakeCompletion{jsonErr: errors.New("upstream down")}},
		{name: "malformed payload", fake: &fakeCompletion{jsonResponse: map[string]any{"not_roadmap": true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, svc := newRoadmapFixture(t, tt.fake)
			user := createTestUser(t, db)
			createTestSubject(t, db, user.ID, "Machine Learning")

			result, err := svc.GenerateRoadmap(context.Background(), nil, user.ID)
			if err != nil {
				t.Fatalf("GenerateRoadmap: %v", err)
			}
			if !result.Degraded || result.DegradedReason == "" {
				t.Fatalf("fallback not tagged as degraded: %+v", result)
			}
			if result.TotalSkills != 1 || result.EstimatedWeeks != 8 {
				t.Fatalf("fallback aggregates wrong: %+v", result)
			}
			if len(result.Roadmap) != 1 || result.Roadmap[0].Subject != "Machine Learning" {
				t.Fatalf("fallback roadmap shape wrong: %+v", result.Roadmap)
			}
			if result.Roadmap[0].Skills[0].Name != "Problem Solving" {
				t.Fatalf("fallback skill = %q", result.Roadmap[0].Skills[0].Name)
			}

			// Even the degraded payload is reconciled into the skill table.
			byName := loadSkillsByName(t, db, user.ID)
			if result.CreatedSkills != 1 || byName["Problem Solving"] == nil {
				t.Fatalf("fallback skill not persisted: created=%d", result.CreatedSkills)
			}
		})
	}
}
