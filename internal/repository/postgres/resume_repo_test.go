package postgres_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-review-backend/internal/domain"
	"resume-review-backend/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRow answers Scan with a fixed error; nil leaves the destinations untouched.
type scriptedRow struct{ err error }

func (r scriptedRow) Scan(dest ...any) error { return r.err }

type queryCall struct {
	sql  string
	args []any
}

// scriptedDB serves QueryRow from per-statement answers and records every call.
type scriptedDB struct {
	update error
	lookup error
	calls  []queryCall
}

func (db *scriptedDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected Exec")
}

func (db *scriptedDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (db *scriptedDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	db.calls = append(db.calls, queryCall{sql: sql, args: args})
	if strings.Contains(sql, "UPDATE resumes") {
		return scriptedRow{err: db.update}
	}
	return scriptedRow{err: db.lookup}
}

func (db *scriptedDB) updates() []queryCall {
	var out []queryCall
	for _, c := range db.calls {
		if strings.Contains(c.sql, "UPDATE resumes") {
			out = append(out, c)
		}
	}
	return out
}

func TestApplyReviewOutcomeMapping(t *testing.T) {
	score := 88
	notes := "Strong portfolio"
	update := domain.ReviewUpdate{Status: domain.ResumeStatusApproved, Score: &score, Notes: &notes}
	pending := []domain.ResumeStatus{domain.ResumeStatusPending}

	tests := []struct {
		name    string
		update  error
		lookup  error
		from    []domain.ResumeStatus
		wantErr error
		updates int
	}{
		{
			name:    "missing row",
			update:  pgx.ErrNoRows,
			lookup:  pgx.ErrNoRows,
			from:    pending,
			wantErr: domain.ErrNotFound,
			updates: 1,
		},
		{
			name:    "row exists in a status the policy does not allow",
			update:  pgx.ErrNoRows,
			from:    pending,
			wantErr: domain.ErrTransitionNotAllowed,
			updates: 1,
		},
		{
			name:    "malformed id",
			update:  &pgconn.PgError{Code: "22P02"},
			from:    pending,
			wantErr: domain.ErrNotFound,
			updates: 1,
		},
		{
			name:    "no allowed sources skips the update",
			from:    nil,
			wantErr: domain.ErrTransitionNotAllowed,
			updates: 0,
		},
		{
			name:    "no allowed sources and no row",
			lookup:  pgx.ErrNoRows,
			from:    nil,
			wantErr: domain.ErrNotFound,
			updates: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &scriptedDB{update: tt.update, lookup: tt.lookup}
			repo := postgres.NewResumeRepository(db)

			got, err := repo.ApplyReview(context.Background(), "r1", update, tt.from)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, db.updates(), tt.updates)
		})
	}
}

func TestApplyReviewPassesTripleAndSources(t *testing.T) {
	db := &scriptedDB{update: pgx.ErrNoRows}
	repo := postgres.NewResumeRepository(db)

	score := 40
	update := domain.ReviewUpdate{Status: domain.ResumeStatusNeedsRevision, Score: &score}
	from := []domain.ResumeStatus{domain.ResumeStatusPending, domain.ResumeStatusApproved}

	_, err := repo.ApplyReview(context.Background(), "r1", update, from)
	require.ErrorIs(t, err, domain.ErrTransitionNotAllowed)

	updates := db.updates()
	require.Len(t, updates, 1)
	args := updates[0].args
	require.Len(t, args, 5)
	assert.Equal(t, "r1", args[0])
	assert.Equal(t, domain.ResumeStatusNeedsRevision, args[1])
	assert.Equal(t, &score, args[2])
	assert.Nil(t, args[3])
	assert.Equal(t, pq.Array([]string{"Pending", "Approved"}), args[4])
}

func TestApplyReviewBackendErrorPassesThrough(t *testing.T) {
	outage := errors.New("connection reset")
	db := &scriptedDB{update: outage}
	repo := postgres.NewResumeRepository(db)

	_, err := repo.ApplyReview(context.Background(), "r1", domain.ReviewUpdate{Status: domain.ResumeStatusRejected},
		[]domain.ResumeStatus{domain.ResumeStatusPending})
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, db.calls, 1)
}
