package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-review-backend/internal/domain"
	"resume-review-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJanitor struct {
	mock.Mock
}

func (m *MockJanitor) List(ctx context.Context, prefix string) ([]domain.StoredObject, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StoredObject), args.Error(1)
}

func (m *MockJanitor) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func TestOrphanSweeper(t *testing.T) {
	old := time.Now().Add(-48 * time.Hour)
	objects := []domain.StoredObject{
		{Path: "private/u1/1-kept.pdf", LastModified: old},
		{Path: "private/u1/2-orphan.pdf", LastModified: old},
		{Path: "private/u2/3-fresh.pdf", LastModified: time.Now()},
		{Path: "private/u2/4-broken.pdf", LastModified: old},
	}

	newMocks := func() (*MockJanitor, *MockResumeRepo) {
		store := new(MockJanitor)
		repo := new(MockResumeRepo)
		store.On("List", mock.Anything, "private/").Return(objects, nil)
		repo.On("ExistingFilePaths", mock.Anything, []string{
			"private/u1/1-kept.pdf", "private/u1/2-orphan.pdf", "private/u2/4-broken.pdf",
		}).Return(map[string]bool{"private/u1/1-kept.pdf": true}, nil)
		return store, repo
	}

	t.Run("deletes unreferenced objects past grace", func(t *testing.T) {
		store, repo := newMocks()
		store.On("Delete", mock.Anything, "private/u1/2-orphan.pdf").Return(nil)
		store.On("Delete", mock.Anything, "private/u2/4-broken.pdf").Return(errors.New("denied"))

		report, err := usecase.NewOrphanSweeper(store, repo, "private", 24*time.Hour, false).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, report.Scanned)
		assert.Equal(t, 1, report.Referenced)
		assert.Equal(t, 1, report.TooRecent)
		assert.Equal(t, []string{"private/u1/2-orphan.pdf", "private/u2/4-broken.pdf"}, report.Orphans)
		assert.Equal(t, 1, report.Deleted)
		assert.Equal(t, 1, report.Failed)
		store.AssertNotCalled(t, "Delete", mock.Anything, "private/u1/1-kept.pdf")
		store.AssertNotCalled(t, "Delete", mock.Anything, "private/u2/3-fresh.pdf")
	})

	t.Run("dry run deletes nothing", func(t *testing.T) {
		store, repo := newMocks()
		report, err := usecase.NewOrphanSweeper(store, repo, "/private/", 24*time.Hour, true).Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, report.Orphans, 2)
		assert.Zero(t, report.Deleted)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
