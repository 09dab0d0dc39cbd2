package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"resume-review-backend/internal/domain"
	"resume-review-backend/internal/repository/postgres"
	"resume-review-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a disposable database: TEST_DATABASE_URL=postgres://...
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresConnection(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func newUser(t *testing.T, repo domain.UserRepository) *domain.User {
	t.Helper()
	id := uuid.NewString()
	u := &domain.User{ID: id, Email: id + "@example.com"}
	inserted, err := repo.InsertIfAbsent(context.Background(), u)
	require.NoError(t, err)
	require.True(t, inserted)
	return u
}

func TestUserRepositoryInsertIfAbsent(t *testing.T) {
	pool := testPool(t)
	repo := postgres.NewUserRepository(pool)
	ctx := context.Background()

	u := newUser(t, repo)

	again, err := repo.InsertIfAbsent(ctx, &domain.User{ID: u.ID, Email: u.Email})
	require.NoError(t, err)
	assert.False(t, again)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.False(t, got.IsAdmin)
	assert.Nil(t, got.Name)

	_, err = repo.InsertIfAbsent(ctx, &domain.User{ID: uuid.NewString(), Email: u.Email})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepositoryConcurrentFirstLogin(t *testing.T) {
	pool := testPool(t)
	repo := postgres.NewUserRepository(pool)
	id := uuid.NewString()

	var wg sync.WaitGroup
	inserted := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.InsertIfAbsent(context.Background(), &domain.User{ID: id, Email: id + "@example.com"})
			assert.NoError(t, err)
			inserted <- ok
		}()
	}
	wg.Wait()
	close(inserted)

	wins := 0
	for ok := range inserted {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	var count int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM users WHERE id = $1`, id).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestResumeRepositoryLifecycle(t *testing.T) {
	pool := testPool(t)
	users := postgres.NewUserRepository(pool)
	repo := postgres.NewResumeRepository(pool)
	ctx := context.Background()

	owner := newUser(t, users)
	other := newUser(t, users)

	first := &domain.Resume{ID: uuid.NewString(), UserID: owner.ID, FilePath: "private/" + owner.ID + "/1-a.pdf", FileName: "a.pdf"}
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := &domain.Resume{ID: uuid.NewString(), UserID: owner.ID, FilePath: "private/" + owner.ID + "/2-b.pdf", FileName: "b.pdf"}
	require.NoError(t, repo.Create(ctx, second))
	theirs := &domain.Resume{ID: uuid.NewString(), UserID: other.ID, FilePath: "private/" + other.ID + "/3-c.pdf", FileName: "c.pdf"}
	require.NoError(t, repo.Create(ctx, theirs))

	assert.Equal(t, domain.ResumeStatusPending, first.Status)
	assert.False(t, first.CreatedAt.IsZero())

	mine, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")
	for _, r := range mine {
		assert.Equal(t, owner.ID, r.UserID)
		assert.Nil(t, r.Owner)
	}

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	var found bool
	for _, r := range pending {
		assert.Equal(t, domain.ResumeStatusPending, r.Status)
		if r.ID == theirs.ID {
			found = true
			require.NotNil(t, r.Owner)
			assert.Equal(t, other.Email, r.Owner.Email)
		}
	}
	assert.True(t, found)

	score, notes := 85, "Great layout"
	policy := domain.DefaultTransitionPolicy()
	reviewed, err := repo.ApplyReview(ctx, first.ID, domain.ReviewUpdate{
		Status: domain.ResumeStatusApproved, Score: &score, Notes: &notes,
	}, policy.SourcesFor(domain.ResumeStatusApproved))
	require.NoError(t, err)
	assert.Equal(t, domain.ResumeStatusApproved, reviewed.Status)
	assert.Equal(t, 85, *reviewed.Score)
	assert.Equal(t, "Great layout", *reviewed.Notes)
	require.NotNil(t, reviewed.Owner)
	assert.Equal(t, owner.Email, reviewed.Owner.Email)

	_, err = repo.ApplyReview(ctx, first.ID, domain.ReviewUpdate{Status: domain.ResumeStatusRejected},
		policy.SourcesFor(domain.ResumeStatusRejected))
	assert.ErrorIs(t, err, domain.ErrTransitionNotAllowed)

	_, err = repo.ApplyReview(ctx, uuid.NewString(), domain.ReviewUpdate{Status: domain.ResumeStatusRejected},
		policy.SourcesFor(domain.ResumeStatusRejected))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	paths, err := repo.ExistingFilePaths(ctx, []string{first.FilePath, "private/nobody/0-x.pdf"})
	require.NoError(t, err)
	assert.True(t, paths[first.FilePath])
	assert.False(t, paths["private/nobody/0-x.pdf"])
}
