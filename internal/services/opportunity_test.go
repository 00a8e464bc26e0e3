package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/types"
)

func newOpportunityFixture(t *testing.T) (*gorm.DB, OpportunityService) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc := NewOpportunityService(db, log,
		repos.NewOpportunityRepo(db, log),
		repos.NewSkillRepo(db, log))
	return db, svc
}

func createTestSkill(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *types.Skill {
	t.Helper()
	skill := &types.Skill{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Category:    "Technical",
		TargetLevel: 80,
	}
	if err := db.Create(skill).Error; err != nil {
		t.Fatalf("create skill: %v", err)
	}
	return skill
}

func TestMatchOpportunitiesRequiresSkills(t *testing.T) {
	db, svc := newOpportunityFixture(t)
	user := createTestUser(t, db)

	_, err := svc.MatchOpportunities(context.Background(), user.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestMatchOpportunitiesScoresAgainstSkills(t *testing.T) {
	db, svc := newOpportunityFixture(t)
	user := createTestUser(t, db)
	createTestSkill(t, db, user.ID, "Python")
	// Skill matching ignores case.
	createTestSkill(t, db, user.ID, "machine learning")

	result, err := svc.MatchOpportunities(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("MatchOpportunities: %v", err)
	}
	if result.Message != "Found 4 matching opportunities" {
		t.Fatalf("message = %q", result.Message)
	}
	if len(result.Opportunities) != 4 {
		t.Fatalf("got %d opportunities, want 4", len(result.Opportunities))
	}

	wantScores := map[string]float64{
		"Software Engineering Intern": 85*0.6 + (1.0/3.0)*100*0.4,
		"Data Science Intern":         78*0.6 + (2.0/3.0)*100*0.4,
		"Full Stack Developer":        72 * 0.6,
		"Research Assistant":          68*0.6 + (2.0/3.0)*100*0.4,
	}
	for _, opp := range result.Opportunities {
		want, ok := wantScores[opp.Title]
		if !ok {
			t.Fatalf("unexpected opportunity %q", opp.Title)
		}
		if math.Abs(opp.MatchScore-want) > 0.01 {
			t.Fatalf("%s score = %v, want %v", opp.Title, opp.MatchScore, want)
		}
		if opp.UserID != user.ID {
			t.Fatalf("%s owned by %s", opp.Title, opp.UserID)
		}
		if opp.Applied {
			t.Fatalf("%s starts as applied", opp.Title)
		}
	}
}

func TestMatchOpportunitiesReplacesFeed(t *testing.T) {
	db, svc := newOpportunityFixture(t)
	user := createTestUser(t, db)
	createTestSkill(t, db, user.ID, "Python")

	first, err := svc.MatchOpportunities(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("first match: %v", err)
	}
	firstIDs := make(map[uuid.UUID]bool, len(first.Opportunities))
	for _, opp := range first.Opportunities {
		firstIDs[opp.ID] = true
	}

	second, err := svc.MatchOpportunities(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("second match: %v", err)
	}

	stored, err := svc.GetOpportunities(context.Background(), nil, user.ID)
	if err != nil {
		t.Fatalf("GetOpportunities: %v", err)
	}
	if len(stored) != len(second.Opportunities) {
		t.Fatalf("feed has %d rows, want %d", len(stored), len(second.Opportunities))
	}
	for _, opp := range stored {
		if firstIDs[opp.ID] {
			t.Fatalf("row %s survived the feed replacement", opp.ID)
		}
	}
}

func TestMarkApplied(t *testing.T) {
	db, svc := newOpportunityFixture(t)
	user := createTestUser(t, db)
	intruder := createTestUser(t, db)
	createTestSkill(t, db, user.ID, "Python")

	result, err := svc.MatchOpportunities(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("MatchOpportunities: %v", err)
	}
	target := result.Opportunities[0]

	if _, err := svc.MarkApplied(context.Background(), nil, intruder.ID, target.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("apply as intruder: got %v, want ErrNotFound", err)
	}
	if _, err := svc.MarkApplied(context.Background(), nil, user.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("apply unknown id: got %v, want ErrNotFound", err)
	}

	applied, err := svc.MarkApplied(context.Background(), nil, user.ID, target.ID)
	if err != nil {
		t.Fatalf("MarkApplied: %v", err)
	}
	if !applied.Applied {
		t.Fatalf("returned opportunity not marked applied")
	}

	var stored types.Opportunity
	if err := db.First(&stored, "id = ?", target.ID).Error; err != nil {
		t.Fatalf("reload opportunity: %v", err)
	}
	if !stored.Applied {
		t.Fatalf("applied flag not persisted")
	}
}
