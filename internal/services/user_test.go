package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/requestdata"
	"github.com/edupilot/edupilot-backend/internal/types"
)

func newUserFixture(t *testing.T) (*gorm.DB, UserService) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc := NewUserService(db, log, repos.NewUserRepo(db, log), nil)
	return db, svc
}

func authedContext(user *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: user.ID})
}

func TestGetMe(t *testing.T) {
	db, svc := newUserFixture(t)
	user := createTestUser(t, db)

	me, err := svc.GetMe(authedContext(user))
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if me.ID != user.ID || me.Email != user.Email {
		t.Fatalf("got wrong user: %+v", me)
	}

	if _, err := svc.GetMe(context.Background()); err == nil {
		t.Fatalf("GetMe without request data succeeded")
	}
}

func TestUpdateProfileWhitelist(t *testing.T) {
	db, svc := newUserFixture(t)
	user := createTestUser(t, db)

	updated, err := svc.UpdateProfile(authedContext(user), map[string]interface{}{
		"full_name":   "  Renamed Student  ",
		"career_goal": "Data Engineering",
		"email":       "hijack@example.com",
		"password":    "hijacked",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FullName != "Renamed Student" {
		t.Fatalf("full name = %q", updated.FullName)
	}
	if updated.CareerGoal != "Data Engineering" {
		t.Fatalf("career goal = %q", updated.CareerGoal)
	}
	// Credentials are not profile fields.
	if updated.Email != user.Email {
		t.Fatalf("email was overwritten: %q", updated.Email)
	}
	if updated.Password != user.Password {
		t.Fatalf("password was overwritten")
	}
}

func TestUploadAvatarImageUnconfigured(t *testing.T) {
	db, svc := newUserFixture(t)
	user := createTestUser(t, db)

	_, err := svc.UploadAvatarImage(authedContext(user), []byte{0x89, 0x50})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}
