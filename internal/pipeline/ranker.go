package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/scoutline/scoutline/internal/llm"
	"github.com/scoutline/scoutline/internal/talent"
	"github.com/scoutline/scoutline/internal/trail"
)

const (
	skillWeightFactor  = 0.7
	renownWeightFactor = 0.3
	availabilityBonus  = 0.1
	neutralMatch       = 0.5
	maxReasons         = 3
	explainMaxTokens   = 256
)

// Ranker scores the verified shortlist, orders it, and attaches a short
// natural-language justification to each match. Explanation is best-effort:
// provider faults leave the Reasons list empty but never fail the stage.
type Ranker struct {
	provider llm.Provider
	model    string
	trail    *trail.Store
	limit    int
}

func NewRanker(provider llm.Provider, model string, trailStore *trail.Store, limit int) *Ranker {
	if limit <= 0 {
		limit = 5
	}
	return &Ranker{provider: provider, model: model, trail: trailStore, limit: limit}
}

// Rank scores, sorts, and explains candidates. Only the first rank-limit
// verified candidates are considered; scoring is deterministic and ties
// keep their incoming order.
func (rk *Ranker) Rank(ctx context.Context, queryID, rawQuery string, req *RequirementSet, candidates []VerifiedCandidate) ([]MatchResult, error) {
	if len(candidates) > rk.limit {
		candidates = candidates[:rk.limit]
	}

	matches := make([]MatchResult, len(candidates))
	for i, c := range candidates {
		matches[i] = MatchResult{
			CandidateID: c.ID,
			Name:        c.Name,
			Title:       c.Title,
			Score:       scoreCandidate(c, req),
			Stage:       StageRanker,
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	for i := range matches {
		matches[i].Reasons = rk.explain(ctx, rawQuery, candidateByID(candidates, matches[i].CandidateID))
	}

	msg := "ranked 0 candidates"
	if len(matches) > 0 {
		msg = fmt.Sprintf("ranked %d candidates, top match %s (%.2f)", len(matches), matches[0].Name, matches[0].Score)
	}
	if err := rk.trail.AppendEntry(ctx, queryID, StageRanker, msg, ""); err != nil {
		return nil, fmt.Errorf("recording ranker entry: %w", err)
	}
	return matches, nil
}

func candidateByID(candidates []VerifiedCandidate, id string) VerifiedCandidate {
	for _, c := range candidates {
		if c.ID == id {
			return c
		}
	}
	return VerifiedCandidate{}
}

// scoreCandidate computes the deterministic match score:
// min(1, 0.7*skillMatch + 0.3*renownMatch + availabilityBonus).
func scoreCandidate(c VerifiedCandidate, req *RequirementSet) float64 {
	skill := skillMatch(c.Candidate, req.Skills)

	renown := neutralMatch
	if want, ok := req.RenownConstraint(); ok {
		renown = renownMatch(want, c.RenownLevel)
	}

	score := skillWeightFactor*skill + renownWeightFactor*renown
	if c.Available {
		score += availabilityBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}

// skillMatch is the weight-share of required skills the candidate holds.
// With no extracted skills there is nothing to compare, so the component
// reads neutral.
func skillMatch(c talent.Candidate, skills []Requirement) float64 {
	if len(skills) == 0 {
		return neutralMatch
	}
	var total, matched float64
	for _, s := range skills {
		total += s.Weight
		if c.HasSkill(s.Name) {
			matched += s.Weight
		}
	}
	if total == 0 {
		return neutralMatch
	}
	return matched / total
}

// renownMatch scores how well a candidate's renown level satisfies the
// requested constraint.
func renownMatch(want string, level talent.RenownLevel) float64 {
	switch want {
	case RenownWantPopular:
		switch level {
		case talent.RenownFamous:
			return 1.0
		case talent.RenownEstablished:
			return 0.8
		case talent.RenownRising:
			return 0.4
		default:
			return 0.1
		}
	case RenownWantHidden:
		switch level {
		case talent.RenownHidden:
			return 1.0
		case talent.RenownRising:
			return 0.7
		default:
			return 0.2
		}
	case RenownWantRising:
		switch level {
		case talent.RenownRising:
			return 1.0
		case talent.RenownHidden:
			return 0.7
		default:
			return 0.3
		}
	default:
		return neutralMatch
	}
}

func (rk *Ranker) explain(ctx context.Context, rawQuery string, c VerifiedCandidate) []string {
	if rk.provider == nil || c.ID == "" {
		return nil
	}

	user := fmt.Sprintf("Query: %s\n\nCandidate profile:\n%s\nAvailability: %s\nRenown: %s",
		rawQuery, c.ProfileText(), c.Availability, c.RenownLevel)
	resp, err := rk.provider.Complete(ctx, llm.CompletionRequest{
		Model: rk.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: explainSystemPrompt},
			{Role: llm.RoleUser, Content: user},
		},
		MaxTokens:   explainMaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		log.Printf("ranker: explanation failed for %s: %v", c.ID, err)
		return nil
	}

	var reasons []string
	for _, line := range strings.Split(resp.Content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
		if line == "" {
			continue
		}
		reasons = append(reasons, line)
		if len(reasons) >= maxReasons {
			break
		}
	}
	return reasons
}
