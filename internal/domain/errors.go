package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	// ErrEmailTaken means another identity already owns the email address.
	ErrEmailTaken = errors.New("email already registered to another user")
)
