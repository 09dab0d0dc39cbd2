package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/apperror"
	"resume-review-backend/pkg/logger"
	"resume-review-backend/pkg/validation"
)

type reviewUsecase struct {
	repo     domain.ResumeRepository
	store    domain.ObjectStorage
	notifier domain.Notifier
	policy   domain.TransitionPolicy
	urlTTL   time.Duration
}

func NewReviewUsecase(
	repo domain.ResumeRepository,
	store domain.ObjectStorage,
	notifier domain.Notifier,
	policy domain.TransitionPolicy,
	urlTTL time.Duration,
) domain.ReviewUsecase {
	return &reviewUsecase{
		repo:     repo,
		store:    store,
		notifier: notifier,
		policy:   policy,
		urlTTL:   urlTTL,
	}
}

func (u *reviewUsecase) Review(ctx context.Context, resumeID string, in domain.ReviewInput) (*domain.ReviewResult, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	resumeID = strings.TrimSpace(resumeID)
	if resumeID == "" {
		return nil, apperror.Validation("id", "resume id is required")
	}

	if in.Status == domain.ResumeStatusPending {
		return nil, apperror.Validation("status", "cannot revert a resume to Pending")
	}
	if !in.Status.IsOutcome() {
		return nil, apperror.Validation("status", "status must be one of: Approved, Needs Revision, Rejected")
	}
	if err := validation.CheckScore(in.Score); err != nil {
		return nil, apperror.Validation("score", err.Error())
	}
	notes, err := validation.NormalizeNotes(in.Notes)
	if err != nil {
		return nil, apperror.Validation("notes", err.Error())
	}

	update := domain.ReviewUpdate{Status: in.Status, Score: in.Score, Notes: notes}
	updated, err := u.repo.ApplyReview(ctx, resumeID, update, u.policy.SourcesFor(in.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound("Resume not found")
		case errors.Is(err, domain.ErrTransitionNotAllowed):
			return nil, apperror.Conflict("This resume has already been reviewed")
		default:
			return nil, apperror.Unavailable("could not save the review, please retry", err)
		}
	}

	result := &domain.ReviewResult{Resume: updated}
	result.Notified = u.notify(ctx, updated)
	return result, nil
}

// notify is best effort: the review is already durable, so failures are only logged.
func (u *reviewUsecase) notify(ctx context.Context, r *domain.Resume) bool {
	if u.notifier == nil {
		return false
	}
	if r.Owner == nil || r.Owner.Email == "" {
		logger.Log.Warn("Review saved but owner email is unknown, skipping notification", "resume_id", r.ID)
		return false
	}

	err := u.notifier.NotifyReview(context.WithoutCancel(ctx), domain.ReviewNotification{
		Email:  r.Owner.Email,
		Status: r.Status,
		Score:  r.Score,
		Notes:  r.Notes,
	})
	if err != nil {
		logger.Log.Warn("Review notification failed", "resume_id", r.ID, "status", r.Status, "error", err)
		return false
	}
	return true
}

func (u *reviewUsecase) SignedFileURL(ctx context.Context, resumeID string) (*domain.SignedFileURL, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	resume, err := u.repo.GetByID(ctx, strings.TrimSpace(resumeID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Resume not found")
		}
		return nil, apperror.Unavailable("could not load the resume, please retry", err)
	}

	url, err := u.store.SignedURL(ctx, resume.FilePath, u.urlTTL)
	if err != nil {
		return nil, apperror.Unavailable("could not create a download link, please retry", err)
	}

	return &domain.SignedFileURL{
		URL:       url,
		FileName:  resume.FileName,
		ExpiresIn: int(u.urlTTL / time.Second),
	}, nil
}
