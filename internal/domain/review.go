package domain

import "context"

// TransitionPolicy is the explicit set of allowed review transitions.
type TransitionPolicy struct {
	allowed map[ResumeStatus]map[ResumeStatus]bool
}

func NewTransitionPolicy(pairs map[ResumeStatus][]ResumeStatus) TransitionPolicy {
	p := TransitionPolicy{allowed: make(map[ResumeStatus]map[ResumeStatus]bool)}
	for from, tos := range pairs {
		set := make(map[ResumeStatus]bool, len(tos))
		for _, to := range tos {
			set[to] = true
		}
		p.allowed[from] = set
	}
	return p
}

// DefaultTransitionPolicy only lets a Pending submission receive an outcome.
func DefaultTransitionPolicy() TransitionPolicy {
	return NewTransitionPolicy(map[ResumeStatus][]ResumeStatus{
		ResumeStatusPending: ReviewOutcomes,
	})
}

// ReReviewTransitionPolicy also lets an outcome be replaced by another outcome.
func ReReviewTransitionPolicy() TransitionPolicy {
	pairs := map[ResumeStatus][]ResumeStatus{
		ResumeStatusPending: ReviewOutcomes,
	}
	for _, s := range ReviewOutcomes {
		pairs[s] = ReviewOutcomes
	}
	return NewTransitionPolicy(pairs)
}

func (p TransitionPolicy) Allows(from, to ResumeStatus) bool {
	return p.allowed[from][to]
}

// SourcesFor lists every status from which to can be reached, in a stable order.
func (p TransitionPolicy) SourcesFor(to ResumeStatus) []ResumeStatus {
	var out []ResumeStatus
	for _, from := range append([]ResumeStatus{ResumeStatusPending}, ReviewOutcomes...) {
		if p.Allows(from, to) {
			out = append(out, from)
		}
	}
	return out
}

type ReviewInput struct {
	Status ResumeStatus
	Score  *int
	Notes  *string
}

type ReviewResult struct {
	Resume   *Resume `json:"resume"`
	Notified bool    `json:"notified"`
}

type SignedFileURL struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	ExpiresIn int    `json:"expires_in"`
}

type ReviewUsecase interface {
	Review(ctx context.Context, resumeID string, in ReviewInput) (*ReviewResult, error)
	SignedFileURL(ctx context.Context, resumeID string) (*SignedFileURL, error)
}
