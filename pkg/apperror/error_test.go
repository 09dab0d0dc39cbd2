package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"resume-review-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	assert.Equal(t, apperror.KindAuth, apperror.Unauthorized("x").Kind())
	assert.Equal(t, apperror.KindAuthorization, apperror.Forbidden("x").Kind())
	assert.Equal(t, apperror.KindValidation, apperror.Validation("score", "bad").Kind())
	assert.Equal(t, apperror.KindConflict, apperror.Conflict("x").Kind())
	assert.Equal(t, apperror.KindRateLimited, apperror.TooManyRequests("x").Kind())
	assert.Equal(t, apperror.KindBackend, apperror.Internal(errors.New("db down")).Kind())
	assert.Equal(t, apperror.KindBackend, apperror.Unavailable("try later", nil).Kind())
}

func TestValidationCarriesField(t *testing.T) {
	err := apperror.Validation("file", "File is larger than 5MB")
	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, "File is larger than 5MB", err.Fields["file"])
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("usecase: %w", apperror.Forbidden("Admin access required"))
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(wrapped))
	assert.Equal(t, apperror.KindBackend, apperror.KindOf(errors.New("plain")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperror.Internal(cause)
	assert.ErrorIs(t, err, cause)
}
