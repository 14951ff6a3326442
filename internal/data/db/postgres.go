package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/platform/envutil"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := envutil.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := envutil.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := envutil.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := envutil.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := envutil.GetEnv("POSTGRES_NAME", "startupai", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&domain.User{},
		&domain.UserToken{},
		&domain.Project{},
		&domain.OnboardingSession{},
		&domain.ConversationTurn{},
		&domain.Brief{},
		&domain.Evidence{},
		&domain.GateReview{},
		&domain.Report{},
		&domain.Approval{},
		&domain.JobRun{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	fks := []struct{ table, name, column, refTable, refColumn string }{
		{"user_token", "fk_user_token_user_id", "user_id", "user", "id"},
		{"project", "fk_project_owner_user_id", "owner_user_id", "user", "id"},
		{"onboarding_session", "fk_onboarding_session_user_id", "user_id", "user", "id"},
		{"conversation_turn", "fk_conversation_turn_session_id", "session_id", "onboarding_session", "id"},
		{"brief", "fk_brief_session_id", "session_id", "onboarding_session", "id"},
		{"evidence", "fk_evidence_project_id", "project_id", "project", "id"},
		{"gate_review", "fk_gate_review_project_id", "project_id", "project", "id"},
		{"approval", "fk_approval_project_id", "project_id", "project", "id"},
	}
	for _, fk := range fks {
		stmt := fmt.Sprintf(`
      DO $$ BEGIN
        IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
          ALTER TABLE %q ADD CONSTRAINT %q
          FOREIGN KEY (%q) REFERENCES %q(%q) ON DELETE CASCADE;
        END IF;
      END $$;`,
			fk.name, fk.table, fk.name, fk.column, fk.refTable, fk.refColumn)
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", fk.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
