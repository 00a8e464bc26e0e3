package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/requestdata"
	"github.com/edupilot/edupilot-backend/internal/types"
)

func newAuthFixture(t *testing.T) (*gorm.DB, AuthService) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc := NewAuthService(db, log,
		repos.NewUserRepo(db, log),
		nil,
		repos.NewUserTokenRepo(db, log),
		"test-secret",
		time.Hour,
		24*time.Hour)
	return db, svc
}

func registerTestUser(t *testing.T, svc AuthService, email string) *types.User {
	t.Helper()
	user := &types.User{
		Email:    email,
		Password: "secret123",
		FullName: "Test Student",
	}
	if err := svc.RegisterUser(context.Background(), user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	_, svc := newAuthFixture(t)
	user := registerTestUser(t, svc, "Student@Example.com")

	if user.Email != "student@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "secret123" {
		t.Fatalf("password stored in plaintext")
	}

	access, refresh, err := svc.LoginUser(context.Background(), "student@example.com", "secret123")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("empty token pair")
	}

	if _, _, err := svc.LoginUser(context.Background(), "student@example.com", "wrong"); err == nil {
		t.Fatalf("login succeeded with wrong password")
	}
	if _, _, err := svc.LoginUser(context.Background(), "nobody@example.com", "secret123"); err == nil {
		t.Fatalf("login succeeded for unknown email")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture(t)
	registerTestUser(t, svc, "student@example.com")

	err := svc.RegisterUser(context.Background(), &types.User{
		Email:    "student@example.com",
		Password: "secret123",
		FullName: "Second Student",
	})
	if err == nil {
		t.Fatalf("duplicate registration succeeded")
	}
}

func TestSetContextFromToken(t *testing.T) {
	_, svc := newAuthFixture(t)
	user := registerTestUser(t, svc, "student@example.com")

	access, refresh, err := svc.LoginUser(context.Background(), "student@example.com", "secret123")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	ctx, err := svc.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		t.Fatalf("no request data in context")
	}
	if rd.UserID != user.ID {
		t.Fatalf("user id = %s, want %s", rd.UserID, user.ID)
	}
	if rd.TokenString != access || rd.RefreshToken != refresh {
		t.Fatalf("token pair not carried into context")
	}

	if _, err := svc.SetContextFromToken(context.Background(), "not-a-jwt"); err == nil {
		t.Fatalf("malformed token accepted")
	}
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	_, svc := newAuthFixture(t)
	registerTestUser(t, svc, "student@example.com")

	_, refresh, err := svc.LoginUser(context.Background(), "student@example.com", "secret123")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{RefreshToken: refresh})
	newAccess, newRefresh, err := svc.RefreshUser(ctx)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if newAccess == "" || newRefresh == "" || newRefresh == refresh {
		t.Fatalf("token pair not rotated")
	}

	// The consumed refresh token is gone.
	if _, _, err := svc.RefreshUser(ctx); err == nil {
		t.Fatalf("old refresh token still usable")
	}
}

func TestLoginPrunesExpiredTokens(t *testing.T) {
	db, svc := newAuthFixture(t)
	user := registerTestUser(t, svc, "student@example.com")

	expired := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  "stale-access",
		RefreshToken: "stale-refresh",
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("seed expired token: %v", err)
	}

	if _, _, err := svc.LoginUser(context.Background(), "student@example.com", "secret123"); err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	var count int64
	if err := db.Model(&types.UserToken{}).Where("id = ?", expired.ID).Count(&count).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 0 {
		t.Fatalf("expired token survived login")
	}
}

func TestLogoutDeletesToken(t *testing.T) {
	db, svc := newAuthFixture(t)
	registerTestUser(t, svc, "student@example.com")

	access, _, err := svc.LoginUser(context.Background(), "student@example.com", "secret123")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{TokenString: access})
	if err := svc.LogoutUser(ctx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}

	var count int64
	if err := db.Model(&types.UserToken{}).Where("access_token = ?", access).Count(&count).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 0 {
		t.Fatalf("token survived logout")
	}
}
