package migration

import (
	"context"

	"resume-builder/pkg/logger"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// RunMigrations creates the tables used by the postgres backend. Each step is
// idempotent so it runs on every startup.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log logger.Logger) error {
	log.Info("Starting database migrations")

	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			log.Error("Migration failed", err, zap.String("name", m.Name))
			return err
		}
		log.Info("Migration completed", zap.String("name", m.Name))
	}

	log.Info("All migrations completed successfully")
	return nil
}

// Migration is one idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

var migrations = []Migration{
	{
		Name: "create_resume_sections",
		SQL: `
		CREATE TABLE IF NOT EXISTS resume_sections (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Name: "create_resume_exports",
		SQL: `
		CREATE TABLE IF NOT EXISTS resume_exports (
			id           UUID PRIMARY KEY,
			status       TEXT NOT NULL,
			title        TEXT NOT NULL DEFAULT '',
			file_name    TEXT NOT NULL DEFAULT '',
			file_path    TEXT NOT NULL DEFAULT '',
			file_size    BIGINT NOT NULL DEFAULT 0,
			page_count   INTEGER NOT NULL DEFAULT 0,
			error        TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		);`,
	},
	{
		Name: "index_resume_exports_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS resume_exports_created_at_idx ON resume_exports (created_at DESC);`,
	},
}
