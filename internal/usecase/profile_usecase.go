package usecase

import (
	"context"
	"errors"
	"strings"

	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/apperror"
	"resume-review-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type profileUsecase struct {
	users    domain.UserRepository
	validate *validator.Validate
}

func NewProfileUsecase(users domain.UserRepository, validate *validator.Validate) domain.ProfileUsecase {
	return &profileUsecase{users: users, validate: validate}
}

func (u *profileUsecase) GetProfile(ctx context.Context) (*domain.User, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	user, err := u.users.GetByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, apperror.Unavailable("could not load profile, please retry", err)
	}
	return user, nil
}

// UpdateProfile changes only the display name; email and admin flag are provider-owned.
func (u *profileUsecase) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.User, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := u.validate.Struct(req); err != nil {
		msgs := validation.FormatValidationErrors(err)
		appErr := apperror.BadRequest(strings.Join(msgs, "; "))
		appErr.Fields = validation.FieldErrors(err)
		return nil, appErr
	}

	user, err := u.users.UpdateName(ctx, s.UserID, &req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, apperror.Unavailable("could not update profile, please retry", err)
	}
	return user, nil
}
