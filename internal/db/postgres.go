package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/types"
	"github.com/slivora/slivora-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "slivora", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Project{},
		&types.TokenUsage{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []string{
		`ALTER TABLE "project"
		 ADD CONSTRAINT "fk_project_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id")
		 ON DELETE CASCADE`,
		`ALTER TABLE "token_usage"
		 ADD CONSTRAINT "fk_token_usage_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id")
		 ON DELETE CASCADE`,
	}
	for _, stmt := range constraints {
		if err := s.db.Exec(stmt).Error; err != nil {
			// Re-running migrations against an existing schema trips
			// duplicate-constraint errors; those are not fatal.
			s.log.Warn("Constraint statement failed (ignored if already present)", "error", err)
		}
	}
	return nil
}
