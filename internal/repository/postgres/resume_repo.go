package postgres

import (
	"context"
	"errors"
	"fmt"

	"resume-review-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type resumeRepo struct {
	db DBTX
}

func NewResumeRepository(db DBTX) domain.ResumeRepository {
	return &resumeRepo{db: db}
}

const resumeColumns = `r.id, r.user_id, r.file_path, r.file_name, r.status, r.score, r.notes, r.created_at`

func scanResume(row pgx.Row, withOwner bool) (*domain.Resume, error) {
	var (
		res   domain.Resume
		email *string
		name  *string
	)
	dest := []any{&res.ID, &res.UserID, &res.FilePath, &res.FileName, &res.Status, &res.Score, &res.Notes, &res.CreatedAt}
	if withOwner {
		dest = append(dest, &email, &name)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if withOwner && email != nil {
		res.Owner = &domain.ResumeOwner{Email: *email, Name: name}
	}
	return &res, nil
}

func (r *resumeRepo) Create(ctx context.Context, res *domain.Resume) error {
	query := `INSERT INTO resumes (id, user_id, file_path, file_name, status, score, notes)
              VALUES ($1, $2, $3, $4, $5, NULL, NULL)
              RETURNING created_at`
	err := r.db.QueryRow(ctx, query, res.ID, res.UserID, res.FilePath, res.FileName, domain.ResumeStatusPending).
		Scan(&res.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return fmt.Errorf("file path already recorded: %w", err)
			case pgForeignKeyViolation:
				return fmt.Errorf("owner %s does not exist: %w", res.UserID, err)
			}
		}
		return err
	}
	res.Status = domain.ResumeStatusPending
	res.Score = nil
	res.Notes = nil
	return nil
}

func (r *resumeRepo) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	query := `SELECT ` + resumeColumns + `, u.email, u.name
              FROM resumes r
              LEFT JOIN users u ON u.id = r.user_id
              WHERE r.id = $1`
	res, err := scanResume(r.db.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, notFoundOnBadID(err)
	}
	return res, nil
}

func (r *resumeRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Resume, error) {
	query := `SELECT ` + resumeColumns + `
              FROM resumes r
              WHERE r.user_id = $1
              ORDER BY r.created_at DESC, r.id`
	return r.list(ctx, false, query, userID)
}

func (r *resumeRepo) ListPending(ctx context.Context) ([]domain.Resume, error) {
	query := `SELECT ` + resumeColumns + `, u.email, u.name
              FROM resumes r
              LEFT JOIN users u ON u.id = r.user_id
              WHERE r.status = $1
              ORDER BY r.created_at DESC, r.id`
	return r.list(ctx, true, query, domain.ResumeStatusPending)
}

func (r *resumeRepo) list(ctx context.Context, withOwner bool, query string, args ...any) ([]domain.Resume, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := []domain.Resume{}
	for rows.Next() {
		res, err := scanResume(rows, withOwner)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, *res)
	}
	return resumes, rows.Err()
}

// ApplyReview writes status, score and notes in one guarded statement.
// The WHERE clause carries the transition rule so two reviewers racing on the
// same row cannot both succeed when only one transition is allowed.
func (r *resumeRepo) ApplyReview(ctx context.Context, id string, update domain.ReviewUpdate, from []domain.ResumeStatus) (*domain.Resume, error) {
	if len(from) == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrTransitionNotAllowed
	}

	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	query := `WITH updated AS (
                  UPDATE resumes
                  SET status = $2, score = $3, notes = $4
                  WHERE id = $1 AND status = ANY($5)
                  RETURNING id, user_id, file_path, file_name, status, score, notes, created_at
              )
              SELECT ` + resumeColumns + `, u.email, u.name
              FROM updated r
              LEFT JOIN users u ON u.id = r.user_id`
	res, err := scanResume(r.db.QueryRow(ctx, query, id, update.Status, update.Score, update.Notes, pq.Array(sources)), true)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundOnBadID(err)
	}

	// Nothing updated: tell a missing row apart from a disallowed transition
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrTransitionNotAllowed
}

func (r *resumeRepo) ExistingFilePaths(ctx context.Context, paths []string) (map[string]bool, error) {
	found := make(map[string]bool, len(paths))
	if len(paths) == 0 {
		return found, nil
	}

	rows, err := r.db.Query(ctx, `SELECT file_path FROM resumes WHERE file_path = ANY($1)`, pq.Array(paths))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		found[p] = true
	}
	return found, rows.Err()
}
