package domain

import "context"

type ReviewNotification struct {
	Email  string
	Status ResumeStatus
	Score  *int
	Notes  *string
}

// Notifier delivers review outcomes to the candidate. Best effort only.
type Notifier interface {
	NotifyReview(ctx context.Context, n ReviewNotification) error
}
