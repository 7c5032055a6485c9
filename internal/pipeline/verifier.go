package pipeline

import (
	"context"
	"fmt"

	"github.com/scoutline/scoutline/internal/talent"
	"github.com/scoutline/scoutline/internal/trail"
)

// Verifier annotates retrieved candidates with quality signals the Ranker
// consumes. It never drops, reorders, or mutates candidates: the output has
// the same cardinality and order as the input.
type Verifier struct {
	trail *trail.Store
}

func NewVerifier(trailStore *trail.Store) *Verifier {
	return &Verifier{trail: trailStore}
}

// Verify annotates the shortlist and records a conversation entry.
func (v *Verifier) Verify(ctx context.Context, queryID string, candidates []talent.Candidate) ([]VerifiedCandidate, error) {
	verified := make([]VerifiedCandidate, len(candidates))
	complete := 0
	for i, c := range candidates {
		verified[i] = VerifiedCandidate{
			Candidate:          c,
			ProfileComplete:    c.Title != "" && c.Bio != "" && len(c.Skills) > 0,
			HasValidationLinks: len(c.Links) > 0,
			Available:          c.Availability == talent.AvailabilityAvailable,
		}
		if verified[i].ProfileComplete {
			complete++
		}
	}

	msg := fmt.Sprintf("verified %d candidates, %d with complete profiles", len(verified), complete)
	if err := v.trail.AppendEntry(ctx, queryID, StageVerifier, msg, ""); err != nil {
		return nil, fmt.Errorf("recording verifier entry: %w", err)
	}
	return verified, nil
}
