package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
)

// Schema for the in-memory test database. Written out by hand because the
// production migrations use postgres-only defaults and extensions.
var testSchema = []string{
	`CREATE TABLE user (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		username TEXT,
		password TEXT NOT NULL,
		full_name TEXT NOT NULL,
		degree_program TEXT,
		current_year INTEGER,
		current_semester INTEGER,
		career_goal TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		avatar_bucket_key TEXT,
		avatar_url TEXT,
		avatar_color TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE user_token (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		expires_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE subject (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		code TEXT,
		semester INTEGER,
		year INTEGER,
		credits INTEGER,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'in_progress',
		progress INTEGER NOT NULL DEFAULT 0,
		documentation_submitted BOOLEAN NOT NULL DEFAULT 0,
		generated_task TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE concept (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		learned BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (subject_id, seq)
	)`,
	`CREATE TABLE submission (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		task TEXT NOT NULL,
		repository_link TEXT,
		documentation_filename TEXT,
		documentation_key TEXT,
		submitted_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE skill (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		subject_id TEXT,
		name TEXT NOT NULL,
		category TEXT,
		proficiency_level REAL NOT NULL DEFAULT 0,
		target_level REAL,
		acquired_date DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE project (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		problem_statement TEXT,
		required_skills TEXT,
		deliverables TEXT,
		evaluation_criteria TEXT,
		status TEXT NOT NULL DEFAULT 'not_started',
		github_url TEXT,
		live_url TEXT,
		completion_percentage INTEGER NOT NULL DEFAULT 0,
		difficulty_level TEXT,
		estimated_hours INTEGER,
		actual_hours INTEGER,
		start_date DATETIME,
		end_date DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE milestone (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		project_id TEXT,
		title TEXT NOT NULL,
		description TEXT,
		target_date DATETIME,
		completed_date DATETIME,
		is_completed BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE cv (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		summary TEXT,
		education TEXT,
		skills TEXT,
		projects TEXT,
		formatted_text TEXT,
		format_type TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE opportunity (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		company TEXT,
		location TEXT,
		type TEXT,
		description TEXT,
		required_skills TEXT,
		match_score REAL NOT NULL DEFAULT 0,
		url TEXT,
		applied BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}

func createTestUser(t *testing.T, db *gorm.DB) *types.User {
	t.Helper()
	user := &types.User{
		ID:            uuid.New(),
		Email:         uuid.New().String() + "@example.com",
		Password:      "hashed",
		FullName:      "Test Student",
		DegreeProgram: "Computer Science",
		CareerGoal:    "Backend Engineering",
		IsActive:      true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestSubject(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *types.Subject {
	t.Helper()
	subject := &types.Subject{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Status: types.SubjectStatusInProgress,
	}
	if err := db.Create(subject).Error; err != nil {
		t.Fatalf("create subject: %v", err)
	}
	return subject
}

// fakeCompletion scripts the completion client for tests.
type fakeCompletion struct {
	jsonResponse map[string]any
	jsonErr      error
	textResponse string
	textErr      error
	jsonCalls    int
	textCalls    int
}

func (f *fakeCompletion) GenerateJSON(ctx context.Context, system, user string) (map[string]any, error) {
	f.jsonCalls++
	if f.jsonErr != nil {
		return nil, f.jsonErr
	}
	return f.jsonResponse, nil
}

func (f *fakeCompletion) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.textCalls++
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.textResponse, nil
}
