package database

import (
	"context"

	"resume-review-backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of pgxpool.Pool migrations need.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Migration is one idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations are applied in order on every start; each statement is idempotent.
var Migrations = []Migration{
	{
		Name: "create_users",
		SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id         UUID PRIMARY KEY,
				email      TEXT NOT NULL UNIQUE,
				name       TEXT,
				is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
	},
	{
		Name: "create_resumes",
		SQL: `
			CREATE TABLE IF NOT EXISTS resumes (
				id         UUID PRIMARY KEY,
				user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				file_path  TEXT NOT NULL UNIQUE,
				file_name  TEXT NOT NULL,
				status     TEXT NOT NULL DEFAULT 'Pending'
				           CHECK (status IN ('Pending', 'Approved', 'Needs Revision', 'Rejected')),
				score      INTEGER CHECK (score BETWEEN 0 AND 100),
				notes      TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT resumes_pending_unreviewed
				           CHECK (status <> 'Pending' OR (score IS NULL AND notes IS NULL))
			)`,
	},
	{
		// Tables created before the constraint existed
		Name: "constraint_resumes_pending_unreviewed",
		SQL: `
			DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint WHERE conname = 'resumes_pending_unreviewed'
				) THEN
					ALTER TABLE resumes ADD CONSTRAINT resumes_pending_unreviewed
						CHECK (status <> 'Pending' OR (score IS NULL AND notes IS NULL));
				END IF;
			END $$`,
	},
	{
		Name: "index_resumes_owner_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_resumes_user_created ON resumes (user_id, created_at DESC)`,
	},
	{
		Name: "index_resumes_pending",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_resumes_pending ON resumes (created_at DESC) WHERE status = 'Pending'`,
	},
}

// RunMigrations executes every migration, stopping at the first failure.
func RunMigrations(ctx context.Context, db Execer) error {
	logger.Log.Info("Starting database migrations", "count", len(Migrations))

	for _, m := range Migrations {
		if _, err := db.Exec(ctx, m.SQL); err != nil {
			logger.Log.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		logger.Log.Info("Migration completed", "name", m.Name)
	}

	logger.Log.Info("All migrations completed successfully")
	return nil
}
