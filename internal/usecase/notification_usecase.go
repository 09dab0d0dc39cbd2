package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/email"
)

var (
	ErrNotifierUnconfigured = errors.New("notification sender not configured")
	ErrNoRecipient          = errors.New("notification has no recipient")
)

// MailSender is implemented by email.SMTPSender.
type MailSender interface {
	Send(ctx context.Context, to, subject, html string) error
	IsConfigured() bool
}

type notificationUsecase struct {
	sender  MailSender
	timeout time.Duration
}

func NewNotificationUsecase(sender MailSender, timeout time.Duration) domain.Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &notificationUsecase{sender: sender, timeout: timeout}
}

func (u *notificationUsecase) NotifyReview(ctx context.Context, n domain.ReviewNotification) error {
	if u.sender == nil || !u.sender.IsConfigured() {
		return ErrNotifierUnconfigured
	}
	n.Email = strings.TrimSpace(n.Email)
	if n.Email == "" {
		return ErrNoRecipient
	}

	subject, html, err := email.ComposeReviewEmail(n)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	return u.sender.Send(ctx, n.Email, subject, html)
}
