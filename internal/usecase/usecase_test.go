package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-review-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) InsertIfAbsent(ctx context.Context, user *domain.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) UpdateName(ctx context.Context, id string, name *string) (*domain.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockResumeRepo struct {
	mock.Mock
}

func (m *MockResumeRepo) Create(ctx context.Context, resume *domain.Resume) error {
	return m.Called(ctx, resume).Error(0)
}

func (m *MockResumeRepo) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Resume, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) ListPending(ctx context.Context) ([]domain.Resume, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) ApplyReview(ctx context.Context, id string, update domain.ReviewUpdate, from []domain.ResumeStatus) (*domain.Resume, error) {
	args := m.Called(ctx, id, update, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) ExistingFilePaths(ctx context.Context, paths []string) (map[string]bool, error) {
	args := m.Called(ctx, paths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

// Mock collaborators
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, path, contentType string, data []byte) error {
	return m.Called(ctx, path, contentType, data).Error(0)
}

func (m *MockStorage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, path, ttl)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyReview(ctx context.Context, n domain.ReviewNotification) error {
	return m.Called(ctx, n).Error(0)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, raw string) (*domain.TokenClaims, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenClaims), args.Error(1)
}

type MockMagicLink struct {
	mock.Mock
}

func (m *MockMagicLink) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	return m.Called(ctx, email, redirectTo).Error(0)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	args := m.Called(ctx, ip, userID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

type MockSender struct {
	mock.Mock
	configured bool
}

func (m *MockSender) Send(ctx context.Context, to, subject, html string) error {
	return m.Called(ctx, to, subject, html).Error(0)
}

func (m *MockSender) IsConfigured() bool { return m.configured }

// Session helpers
func candidateCtx(userID string) context.Context {
	return domain.WithSession(context.Background(), domain.Session{
		Kind: domain.SessionAuthenticated, UserID: userID, Email: userID + "@example.com",
	})
}

func adminCtx() context.Context {
	return domain.WithSession(context.Background(), domain.Session{
		Kind: domain.SessionAdmin, UserID: "admin-1", Email: "admin@example.com",
	})
}

// memUsers is an in-memory UserRepository with the same insert-if-absent semantics as Postgres.
type memUsers struct {
	mu   sync.Mutex
	rows map[string]domain.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]domain.User{}} }

func (r *memUsers) InsertIfAbsent(ctx context.Context, u *domain.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.ID]; ok {
		return false, nil
	}
	for _, existing := range r.rows {
		if existing.Email == u.Email {
			return false, domain.ErrEmailTaken
		}
	}
	row := *u
	row.CreatedAt = time.Now()
	r.rows[u.ID] = row
	return true, nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) UpdateName(ctx context.Context, id string, name *string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Name = name
	r.rows[id] = u
	return &u, nil
}

// memResumes is an in-memory ResumeRepository joined against memUsers.
type memResumes struct {
	mu    sync.Mutex
	rows  map[string]domain.Resume
	users *memUsers
}

func newMemResumes(users *memUsers) *memResumes {
	return &memResumes{rows: map[string]domain.Resume{}, users: users}
}

func (r *memResumes) withOwner(res domain.Resume) domain.Resume {
	if u, err := r.users.GetByID(context.Background(), res.UserID); err == nil {
		res.Owner = &domain.ResumeOwner{Email: u.Email, Name: u.Name}
	}
	return res
}

func (r *memResumes) Create(ctx context.Context, res *domain.Resume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res.CreatedAt = time.Now()
	r.rows[res.ID] = *res
	return nil
}

func (r *memResumes) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	res = r.withOwner(res)
	return &res, nil
}

func (r *memResumes) sorted(keep func(domain.Resume) bool, owner bool) []domain.Resume {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Resume{}
	for _, res := range r.rows {
		if keep(res) {
			if owner {
				res = r.withOwner(res)
			}
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memResumes) ListByOwner(ctx context.Context, userID string) ([]domain.Resume, error) {
	return r.sorted(func(res domain.Resume) bool { return res.UserID == userID }, false), nil
}

func (r *memResumes) ListPending(ctx context.Context) ([]domain.Resume, error) {
	return r.sorted(func(res domain.Resume) bool { return res.Status == domain.ResumeStatusPending }, true), nil
}

func (r *memResumes) ApplyReview(ctx context.Context, id string, u domain.ReviewUpdate, from []domain.ResumeStatus) (*domain.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	allowed := false
	for _, s := range from {
		if res.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return nil, domain.ErrTransitionNotAllowed
	}
	res.Status, res.Score, res.Notes = u.Status, u.Score, u.Notes
	r.rows[id] = res
	res = r.withOwner(res)
	return &res, nil
}

func (r *memResumes) ExistingFilePaths(ctx context.Context, paths []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for _, res := range r.rows {
		for _, p := range paths {
			if res.FilePath == p {
				out[p] = true
			}
		}
	}
	return out, nil
}

// memStorage records objects in a map.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStorage() *memStorage { return &memStorage{objects: map[string][]byte{}} }

func (s *memStorage) Put(ctx context.Context, path, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[path] = data
	return nil
}

func (s *memStorage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	return "https://storage.example.com/" + path + "?expires=" + ttl.String(), nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
