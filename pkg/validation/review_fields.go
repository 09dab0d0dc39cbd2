package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MinScore      = 0
	MaxScore      = 100
	MaxNotesRunes = 5000
)

var (
	ErrScoreNotInteger = errors.New("score must be a whole number")
	ErrScoreRange      = errors.New("score must be between 0 and 100")
	ErrNotesTooLong    = errors.New("notes must be at most 5000 characters")
)

// CoerceScore turns a raw JSON score into an optional integer.
// Absent, null and empty-string values mean "no score". Numeric strings
// such as "85" are accepted because form inputs submit text.
func CoerceScore(raw json.RawMessage) (*int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, ErrScoreNotInteger
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
	} else {
		text = string(raw)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, ErrScoreNotInteger
	}
	if f < MinScore || f > MaxScore {
		return nil, ErrScoreRange
	}

	score := int(f)
	return &score, nil
}

// CheckScore validates an already-typed score.
func CheckScore(score *int) error {
	if score == nil {
		return nil
	}
	if *score < MinScore || *score > MaxScore {
		return ErrScoreRange
	}
	return nil
}

// NormalizeNotes trims reviewer notes; blank notes become nil.
func NormalizeNotes(notes *string) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > MaxNotesRunes {
		return nil, ErrNotesTooLong
	}
	return &trimmed, nil
}
