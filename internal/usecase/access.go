package usecase

import (
	"context"

	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/apperror"
)

func requireSession(ctx context.Context) (domain.Session, error) {
	s := domain.SessionFrom(ctx)
	if !s.IsAuthenticated() || s.UserID == "" {
		return s, apperror.Unauthorized("User not authenticated")
	}
	return s, nil
}

// requireAdmin re-checks the session attached by the middleware.
func requireAdmin(ctx context.Context) (domain.Session, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return s, err
	}
	if !s.IsAdmin() {
		return s, apperror.Forbidden("Admin access required")
	}
	return s, nil
}
