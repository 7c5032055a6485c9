package pipeline

import (
	"github.com/scoutline/scoutline/internal/talent"
	"github.com/scoutline/scoutline/internal/trail"
)

// Stage identifiers used in conversation entries and task records.
const (
	StageAnalyst   = "analyst"
	StageRetriever = "retriever"
	StageVerifier  = "verifier"
	StageRanker    = "ranker"
	StageCache     = "cache"
)

// PipelineStages lists the stages every invocation is expected to run,
// in execution order.
var PipelineStages = []string{StageAnalyst, StageRetriever, StageVerifier, StageRanker}

// Constraint types and renown constraint values.
const (
	ConstraintRenown = "renown"

	RenownWantPopular = "popular"
	RenownWantHidden  = "hidden"
	RenownWantRising  = "rising"
	RenownWantAny     = "any"
)

// Requirement is one weighted skill term extracted from a query.
type Requirement struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Constraint is one typed constraint extracted from a query, e.g.
// {renown, popular}.
type Constraint struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// RequirementSet is the structured form of a free-text query. It is
// produced once per invocation by the Analyst and never mutated after.
type RequirementSet struct {
	Skills      []Requirement `json:"skills"`
	Constraints []Constraint  `json:"constraints"`
	Summary     string        `json:"summary"`
}

// RenownConstraint returns the requested renown value, if one was extracted.
// An "any" constraint reads as no constraint.
func (rs *RequirementSet) RenownConstraint() (string, bool) {
	for _, c := range rs.Constraints {
		if c.Type == ConstraintRenown && c.Value != "" && c.Value != RenownWantAny {
			return c.Value, true
		}
	}
	return "", false
}

// VerifiedCandidate is a retrieved candidate annotated by the Verifier.
// Annotations are additive; the underlying candidate is unchanged.
type VerifiedCandidate struct {
	talent.Candidate
	ProfileComplete    bool `json:"profile_complete"`
	HasValidationLinks bool `json:"has_validation_links"`
	Available          bool `json:"available"`
}

// MatchResult is one ranked match. Results are never persisted standalone;
// they live only inside the cached response payload.
type MatchResult struct {
	CandidateID string   `json:"candidate_id"`
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons"`
	Stage       string   `json:"stage"`
}

// Response is the final output of one pipeline invocation.
type Response struct {
	QueryID      string        `json:"query_id"`
	Matches      []MatchResult `json:"matches"`
	Conversation []trail.Entry `json:"conversation"`
}
