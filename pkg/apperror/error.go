package apperror

import (
	"errors"
	"net/http"
)

// Kind groups errors the way callers react to them.
type Kind string

const (
	KindAuth          Kind = "auth_failure"
	KindAuthorization Kind = "authorization_failure"
	KindValidation    Kind = "validation_failure"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindRateLimited   Kind = "rate_limited"
	KindBackend       Kind = "backend_failure"
)

type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Kind derives the error class from the HTTP status.
func (e *AppError) Kind() Kind {
	switch {
	case e.Code == http.StatusUnauthorized:
		return KindAuth
	case e.Code == http.StatusForbidden:
		return KindAuthorization
	case e.Code == http.StatusBadRequest, e.Code == http.StatusUnprocessableEntity, e.Code == http.StatusRequestEntityTooLarge:
		return KindValidation
	case e.Code == http.StatusConflict:
		return KindConflict
	case e.Code == http.StatusNotFound:
		return KindNotFound
	case e.Code == http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindBackend
	}
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// Validation reports a single field-level problem.
func Validation(field, message string) *AppError {
	e := New(http.StatusBadRequest, message, nil)
	e.Fields = map[string]string{field: message}
	return e
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, message, nil)
}

// Unavailable is a retryable backend failure with a caller-safe message.
func Unavailable(message string, err error) *AppError {
	return New(http.StatusServiceUnavailable, message, err)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// KindOf classifies any error; non-AppErrors are backend failures.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindBackend
}
