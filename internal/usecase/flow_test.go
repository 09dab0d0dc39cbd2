package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-review-backend/internal/domain"
	"resume-review-backend/internal/usecase"
	"resume-review-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// reviewFlow wires the real usecases over in-memory stores.
type reviewFlow struct {
	users    *memUsers
	resumes  *memResumes
	store    *memStorage
	sender   *MockSender
	sessions domain.SessionUsecase
	uploads  domain.ResumeUsecase
	reviews  domain.ReviewUsecase
}

func newReviewFlow(t *testing.T, policy domain.TransitionPolicy) *reviewFlow {
	t.Helper()
	f := &reviewFlow{
		users:  newMemUsers(),
		store:  newMemStorage(),
		sender: &MockSender{configured: true},
	}
	f.resumes = newMemResumes(f.users)

	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "candidate-token").Return(&domain.TokenClaims{Subject: "u1", Email: "Ada@Example.com"}, nil)
	verifier.On("Verify", mock.Anything, "admin-token").Return(&domain.TokenClaims{Subject: "admin-1", Email: "admin@example.com"}, nil)

	_, err := f.users.InsertIfAbsent(context.Background(), &domain.User{ID: "admin-1", Email: "admin@example.com", IsAdmin: true})
	require.NoError(t, err)

	f.sessions = usecase.NewSessionUsecase(verifier, f.users, new(MockMagicLink), "http://localhost:3000", newValidate())
	f.uploads = newResumeUC(f.resumes, f.store, nil, nil)
	f.reviews = usecase.NewReviewUsecase(f.resumes, f.store, usecase.NewNotificationUsecase(f.sender, time.Second), policy, time.Minute)
	return f
}

func (f *reviewFlow) signIn(t *testing.T, token string) context.Context {
	t.Helper()
	s, err := f.sessions.Resolve(context.Background(), token)
	require.NoError(t, err)
	return domain.WithSession(context.Background(), s)
}

func TestUploadReviewNotifyFlow(t *testing.T) {
	f := newReviewFlow(t, domain.DefaultTransitionPolicy())
	f.sender.On("Send", mock.Anything, "ada@example.com", "Your Resume Needs Some Revisions", mock.Anything).Return(nil)

	candidate := f.signIn(t, "candidate-token")
	admin := f.signIn(t, "admin-token")
	assert.True(t, domain.SessionFrom(admin).IsAdmin())
	assert.False(t, domain.SessionFrom(candidate).IsAdmin())

	uploaded, err := f.uploads.Upload(candidate, domain.UploadInput{FileName: "cv.pdf", Size: 2048, Data: samplePDF(2048)})
	require.NoError(t, err)
	assert.Contains(t, f.store.objects, uploaded.FilePath)

	_, err = f.uploads.ListPending(candidate)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	pending, err := f.uploads.ListPending(admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ada@example.com", pending[0].Owner.Email)

	result, err := f.reviews.Review(admin, uploaded.ID, domain.ReviewInput{
		Status: domain.ResumeStatusNeedsRevision, Score: intPtr(55), Notes: strPtr("Tighten the summary"),
	})
	require.NoError(t, err)
	assert.True(t, result.Notified)
	f.sender.AssertExpectations(t)

	mine, err := f.uploads.ListMine(candidate)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.ResumeStatusNeedsRevision, mine[0].Status)
	assert.Equal(t, 55, *mine[0].Score)
	assert.Equal(t, "Tighten the summary", *mine[0].Notes)

	pending, err = f.uploads.ListPending(admin)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second outcome is refused and leaves the first one intact.
	_, err = f.reviews.Review(admin, uploaded.ID, domain.ReviewInput{Status: domain.ResumeStatusApproved, Score: intPtr(99)})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	stored, err := f.resumes.GetByID(context.Background(), uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ResumeStatusNeedsRevision, stored.Status)
	assert.Equal(t, 55, *stored.Score)
}

func TestReviewSurvivesMailOutage(t *testing.T) {
	f := newReviewFlow(t, domain.DefaultTransitionPolicy())
	f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("421 service not available"))

	candidate := f.signIn(t, "candidate-token")
	admin := f.signIn(t, "admin-token")

	uploaded, err := f.uploads.Upload(candidate, domain.UploadInput{FileName: "cv.pdf", Size: 1024, Data: samplePDF(1024)})
	require.NoError(t, err)

	result, err := f.reviews.Review(admin, uploaded.ID, domain.ReviewInput{Status: domain.ResumeStatusApproved, Score: intPtr(88)})
	require.NoError(t, err)
	assert.False(t, result.Notified)

	stored, err := f.resumes.GetByID(context.Background(), uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ResumeStatusApproved, stored.Status)
}

func TestReReviewAllowedWhenEnabled(t *testing.T) {
	f := newReviewFlow(t, domain.ReReviewTransitionPolicy())
	f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	candidate := f.signIn(t, "candidate-token")
	admin := f.signIn(t, "admin-token")

	uploaded, err := f.uploads.Upload(candidate, domain.UploadInput{FileName: "cv.pdf", Size: 1024, Data: samplePDF(1024)})
	require.NoError(t, err)

	_, err = f.reviews.Review(admin, uploaded.ID, domain.ReviewInput{Status: domain.ResumeStatusRejected, Score: intPtr(20)})
	require.NoError(t, err)

	second, err := f.reviews.Review(admin, uploaded.ID, domain.ReviewInput{Status: domain.ResumeStatusApproved, Score: intPtr(80)})
	require.NoError(t, err)
	assert.Equal(t, domain.ResumeStatusApproved, second.Resume.Status)
	assert.Equal(t, 80, *second.Resume.Score)

	_, err = f.reviews.Review(admin, uploaded.ID, domain.ReviewInput{Status: domain.ResumeStatusPending})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
