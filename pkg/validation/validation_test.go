package validation_test

import (
	"encoding/json"
	"strings"
	"testing"

	"resume-review-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileInput struct {
	Name   string `validate:"required,min=1,max=100,valid_name,no_emoji"`
	Status string `validate:"omitempty,review_status"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

func TestCustomValidators(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.Struct(profileInput{Name: "Ada O'Neil-Smith"}))
	assert.NoError(t, v.Struct(profileInput{Name: "José Álvarez", Status: "Needs Revision"}))

	assert.Error(t, v.Struct(profileInput{Name: "Ada 🚀"}))
	assert.Error(t, v.Struct(profileInput{Name: "<script>"}))
	assert.Error(t, v.Struct(profileInput{Name: "Ada", Status: "Pending"}))
	assert.Error(t, v.Struct(profileInput{Name: "Ada", Status: "approved"}))
}

func TestFormatValidationErrors(t *testing.T) {
	v := newValidator()

	err := v.Struct(profileInput{Name: ""})
	require.Error(t, err)

	msgs := validation.FormatValidationErrors(err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Name: is required", msgs[0])

	fields := validation.FieldErrors(err)
	assert.Equal(t, "Name: is required", fields["name"])

	assert.Nil(t, validation.FieldErrors(assert.AnError))
}

func TestCoerceScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *int
		wantErr error
	}{
		{name: "absent", raw: "", want: nil},
		{name: "null", raw: "null", want: nil},
		{name: "empty string", raw: `""`, want: nil},
		{name: "number", raw: "85", want: intPtr(85)},
		{name: "numeric string", raw: `"85"`, want: intPtr(85)},
		{name: "zero", raw: "0", want: intPtr(0)},
		{name: "upper bound", raw: "100", want: intPtr(100)},
		{name: "whole float", raw: "70.0", want: intPtr(70)},
		{name: "too high", raw: "150", wantErr: validation.ErrScoreRange},
		{name: "negative", raw: "-5", wantErr: validation.ErrScoreRange},
		{name: "fraction", raw: "85.5", wantErr: validation.ErrScoreNotInteger},
		{name: "word", raw: `"great"`, wantErr: validation.ErrScoreNotInteger},
		{name: "bool", raw: "true", wantErr: validation.ErrScoreNotInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validation.CoerceScore(json.RawMessage(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckScore(t *testing.T) {
	assert.NoError(t, validation.CheckScore(nil))
	assert.NoError(t, validation.CheckScore(intPtr(50)))
	assert.ErrorIs(t, validation.CheckScore(intPtr(101)), validation.ErrScoreRange)
	assert.ErrorIs(t, validation.CheckScore(intPtr(-1)), validation.ErrScoreRange)
}

func TestNormalizeNotes(t *testing.T) {
	got, err := validation.NormalizeNotes(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := "   \n"
	got, err = validation.NormalizeNotes(&blank)
	require.NoError(t, err)
	assert.Nil(t, got)

	padded := "  tighten the summary  "
	got, err = validation.NormalizeNotes(&padded)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tighten the summary", *got)

	long := strings.Repeat("a", validation.MaxNotesRunes+1)
	_, err = validation.NormalizeNotes(&long)
	assert.ErrorIs(t, err, validation.ErrNotesTooLong)
}

func intPtr(v int) *int { return &v }
