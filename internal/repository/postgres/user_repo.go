package postgres

import (
	"context"
	"errors"
	"fmt"

	"resume-review-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type userRepo struct {
	db DBTX
}

func NewUserRepository(db DBTX) domain.UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, name, is_admin, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// InsertIfAbsent never touches an existing row, so concurrent first logins
// for the same id leave exactly one record with the original values.
func (r *userRepo) InsertIfAbsent(ctx context.Context, user *domain.User) (bool, error) {
	query := `INSERT INTO users (id, email, name, is_admin, created_at)
              VALUES ($1, $2, $3, FALSE, NOW())
              ON CONFLICT (id) DO NOTHING`
	tag, err := r.db.Exec(ctx, query, user.ID, user.Email, user.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return false, fmt.Errorf("%w (%s)", domain.ErrEmailTaken, pgErr.ConstraintName)
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOnBadID(err)
	}
	return user, nil
}

func (r *userRepo) UpdateName(ctx context.Context, id string, name *string) (*domain.User, error) {
	query := `UPDATE users SET name = $2 WHERE id = $1 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, id, name))
	if err != nil {
		return nil, notFoundOnBadID(err)
	}
	return user, nil
}

// notFoundOnBadID maps a malformed uuid literal to not found.
func notFoundOnBadID(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRep {
		return domain.ErrNotFound
	}
	return err
}
