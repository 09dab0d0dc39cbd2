package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-review-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	statements []string
	failOn     string
}

func (r *recordingExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.statements = append(r.statements, sql)
	if r.failOn != "" && strings.Contains(sql, r.failOn) {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	return pgconn.CommandTag{}, nil
}

func TestRunMigrationsInOrder(t *testing.T) {
	db := &recordingExecer{}
	require.NoError(t, database.RunMigrations(context.Background(), db))

	require.Len(t, db.statements, len(database.Migrations))
	assert.Contains(t, db.statements[0], "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, db.statements[1], "CREATE TABLE IF NOT EXISTS resumes")
	assert.Contains(t, db.statements[1], "'Needs Revision'")
	assert.Contains(t, db.statements[1], "status <> 'Pending' OR (score IS NULL AND notes IS NULL)")
	assert.Contains(t, db.statements[2], "ADD CONSTRAINT resumes_pending_unreviewed")
}

func TestRunMigrationsStopsOnFailure(t *testing.T) {
	db := &recordingExecer{failOn: "resumes ("}
	err := database.RunMigrations(context.Background(), db)
	assert.Error(t, err)
	assert.Len(t, db.statements, 2)
}

func TestPoolConfig(t *testing.T) {
	cfg, err := database.PoolConfig("postgres://user:pw@localhost:5432/app?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, pgx.QueryExecModeSimpleProtocol, cfg.ConnConfig.DefaultQueryExecMode)
	assert.Equal(t, int32(25), cfg.MaxConns)

	_, err = database.PoolConfig("::not a dsn::")
	assert.Error(t, err)
}
