package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/apperror"
	"resume-review-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type sessionUsecase struct {
	verifier   domain.TokenVerifier
	users      domain.UserRepository
	magicLinks domain.MagicLinkSender
	redirectTo string
	validate   *validator.Validate
}

func NewSessionUsecase(verifier domain.TokenVerifier, users domain.UserRepository, magicLinks domain.MagicLinkSender, frontendURL string, validate *validator.Validate) domain.SessionUsecase {
	return &sessionUsecase{
		verifier:   verifier,
		users:      users,
		magicLinks: magicLinks,
		redirectTo: strings.TrimRight(frontendURL, "/") + "/auth",
		validate:   validate,
	}
}

func (u *sessionUsecase) Resolve(ctx context.Context, rawToken string) (domain.Session, error) {
	anonymous := domain.Session{Kind: domain.SessionUnauthenticated}

	if rawToken == "" {
		return anonymous, apperror.Unauthorized("authentication required")
	}

	claims, err := u.verifier.Verify(ctx, rawToken)
	if err != nil {
		return anonymous, apperror.New(http.StatusUnauthorized, "session verification failed", err)
	}

	user, err := u.EnsureUser(ctx, claims.Subject, claims.Email)
	if err != nil {
		return anonymous, err
	}

	kind := domain.SessionAuthenticated
	if user.IsAdmin {
		kind = domain.SessionAdmin
	}
	return domain.Session{Kind: kind, UserID: user.ID, Email: user.Email}, nil
}

// EnsureUser creates the local user row on first sight of a provider identity.
// The row is read back after the insert attempt, so concurrent first requests
// converge on the single stored row.
func (u *sessionUsecase) EnsureUser(ctx context.Context, id, email string) (*domain.User, error) {
	existing, err := u.users.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Unavailable("could not load account, please retry", err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.Unauthorized("session verification failed")
	}

	inserted, err := u.users.InsertIfAbsent(ctx, &domain.User{ID: id, Email: email})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, apperror.Conflict("this email is already linked to another account")
		}
		return nil, apperror.Unavailable("could not create account, please retry", err)
	}

	user, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Unavailable("could not load account, please retry", err)
	}
	if inserted {
		logger.Log.Info("Provisioned user on first login", "user_id", id)
	}
	return user, nil
}

func (u *sessionUsecase) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := u.validate.Var(email, "required,email,max=254"); err != nil {
		return apperror.Validation("email", "a valid email address is required")
	}

	if err := u.magicLinks.SendMagicLink(ctx, email, u.redirectTo); err != nil {
		return apperror.Unavailable("could not send sign-in link, please try again", err)
	}
	return nil
}
