package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/types"
	"github.com/edupilot/edupilot-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "edupilot", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Subject{},
		&types.Concept{},
		&types.Submission{},
		&types.Skill{},
		&types.Project{},
		&types.Milestone{},
		&types.CV{},
		&types.Opportunity{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	stmts := []string{
		`ALTER TABLE "user_token" DROP CONSTRAINT IF EXISTS "fk_user_token_user_id";
		 ALTER TABLE "user_token" ADD CONSTRAINT "fk_user_token_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "concept" DROP CONSTRAINT IF EXISTS "fk_concept_subject_id";
		 ALTER TABLE "concept" ADD CONSTRAINT "fk_concept_subject_id"
		 FOREIGN KEY ("subject_id") REFERENCES "subject"("id") ON DELETE CASCADE`,
		`ALTER TABLE "submission" DROP CONSTRAINT IF EXISTS "fk_submission_subject_id";
		 ALTER TABLE "submission" ADD CONSTRAINT "fk_submission_subject_id"
		 FOREIGN KEY ("subject_id") REFERENCES "subject"("id") ON DELETE CASCADE`,
		`ALTER TABLE "skill" DROP CONSTRAINT IF EXISTS "fk_skill_subject_id";
		 ALTER TABLE "skill" ADD CONSTRAINT "fk_skill_subject_id"
		 FOREIGN KEY ("subject_id") REFERENCES "subject"("id") ON DELETE SET NULL`,
	}
	for _, stmt := range stmts {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to configure foreign keys: %w", err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
