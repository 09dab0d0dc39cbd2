package domain

import (
	"context"
	"encoding/json"
	"time"
)

type ResumeStatus string

const (
	ResumeStatusPending       ResumeStatus = "Pending"
	ResumeStatusApproved      ResumeStatus = "Approved"
	ResumeStatusNeedsRevision ResumeStatus = "Needs Revision"
	ResumeStatusRejected      ResumeStatus = "Rejected"
)

// ReviewOutcomes are the statuses a reviewer may set.
var ReviewOutcomes = []ResumeStatus{
	ResumeStatusApproved,
	ResumeStatusNeedsRevision,
	ResumeStatusRejected,
}

func (s ResumeStatus) Valid() bool {
	switch s {
	case ResumeStatusPending, ResumeStatusApproved, ResumeStatusNeedsRevision, ResumeStatusRejected:
		return true
	}
	return false
}

func (s ResumeStatus) IsOutcome() bool {
	return s.Valid() && s != ResumeStatusPending
}

// Resume is one submission plus its review outcome.
// Score and Notes stay nil while Status is Pending.
type Resume struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	FilePath  string       `json:"file_path"`
	FileName  string       `json:"file_name"`
	Status    ResumeStatus `json:"status"`
	Score     *int         `json:"score"`
	Notes     *string      `json:"notes"`
	CreatedAt time.Time    `json:"created_at"`

	// Owner is only populated by queries that join users; nil means not resolved.
	Owner *ResumeOwner `json:"owner,omitempty"`
}

// ResumeOwner is the owner projection shown in the review queue.
type ResumeOwner struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

func (r Resume) MarshalJSON() ([]byte, error) {
	type alias Resume
	out := struct {
		alias
		ScoreBand string `json:"score_band,omitempty"`
	}{alias: alias(r)}
	if r.Score != nil {
		out.ScoreBand = ScoreBand(*r.Score)
	}
	return json.Marshal(out)
}

// ScoreBand buckets a score for display: high above 70, low at 40 or below.
func ScoreBand(score int) string {
	switch {
	case score > 70:
		return "high"
	case score <= 40:
		return "low"
	default:
		return "medium"
	}
}

// ReviewUpdate is written as one statement: status, score and notes together.
type ReviewUpdate struct {
	Status ResumeStatus
	Score  *int
	Notes  *string
}

type ResumeRepository interface {
	Create(ctx context.Context, resume *Resume) error
	GetByID(ctx context.Context, id string) (*Resume, error)
	ListByOwner(ctx context.Context, userID string) ([]Resume, error)
	ListPending(ctx context.Context) ([]Resume, error)
	// ApplyReview updates the row only while its current status is one of from.
	// Returns ErrNotFound when the id is unknown and ErrTransitionNotAllowed when
	// the row exists in another status.
	ApplyReview(ctx context.Context, id string, update ReviewUpdate, from []ResumeStatus) (*Resume, error)
	// ExistingFilePaths reports which of the given object paths are referenced by a row.
	ExistingFilePaths(ctx context.Context, paths []string) (map[string]bool, error)
}

// UploadInput is a candidate upload after multipart decoding.
type UploadInput struct {
	FileName string
	Size     int64
	Data     []byte
	ClientIP string
}

type ResumeUsecase interface {
	ListMine(ctx context.Context) ([]Resume, error)
	ListPending(ctx context.Context) ([]Resume, error)
	Upload(ctx context.Context, in UploadInput) (*Resume, error)
	ExportPending(ctx context.Context) ([]byte, string, error)
}
