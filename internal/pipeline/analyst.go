package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/scoutline/scoutline/internal/llm"
	"github.com/scoutline/scoutline/internal/trail"
)

const (
	defaultSkillWeight = 0.8
	maxFallbackSkills  = 3
	analystMaxTokens   = 1024
	analystTemperature = 0.1
)

// Analyst turns a free-text query into a RequirementSet. It has no hard
// failure mode: when no provider is configured, or the provider errors,
// or its output cannot be parsed, the analyst falls back to keyword
// heuristics so the pipeline always receives a usable requirement set.
type Analyst struct {
	provider llm.Provider
	model    string
	trail    *trail.Store
}

func NewAnalyst(provider llm.Provider, model string, trailStore *trail.Store) *Analyst {
	return &Analyst{provider: provider, model: model, trail: trailStore}
}

// Analyze extracts requirements from rawQuery and records a conversation
// entry for the query. The returned error comes only from the trail store;
// provider faults degrade to the heuristic extraction.
func (a *Analyst) Analyze(ctx context.Context, queryID, rawQuery string) (*RequirementSet, error) {
	set := a.extract(ctx, rawQuery)

	msg := fmt.Sprintf("extracted %d skills and %d constraints", len(set.Skills), len(set.Constraints))
	payload, _ := json.Marshal(set)
	if err := a.trail.AppendEntry(ctx, queryID, StageAnalyst, msg, string(payload)); err != nil {
		return nil, fmt.Errorf("recording analyst entry: %w", err)
	}
	return set, nil
}

func (a *Analyst) extract(ctx context.Context, rawQuery string) *RequirementSet {
	if a.provider == nil {
		return heuristicRequirements(rawQuery)
	}

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: analystSystemPrompt},
			{Role: llm.RoleUser, Content: rawQuery},
		},
		MaxTokens:   analystMaxTokens,
		Temperature: analystTemperature,
		JSONMode:    true,
	})
	if err != nil {
		log.Printf("analyst: provider failed, using keyword fallback: %v", err)
		return heuristicRequirements(rawQuery)
	}

	set, err := parseRequirements(resp.Content)
	if err != nil {
		log.Printf("analyst: unparseable provider output, using keyword fallback: %v", err)
		return heuristicRequirements(rawQuery)
	}
	return set
}

// parseRequirements decodes the provider's JSON, tolerating code fences
// and leading prose around the object.
func parseRequirements(content string) (*RequirementSet, error) {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start > 0 {
		content = content[start:]
	}
	if end := strings.LastIndex(content, "}"); end >= 0 {
		content = content[:end+1]
	}

	var set RequirementSet
	if err := json.Unmarshal([]byte(content), &set); err != nil {
		return nil, fmt.Errorf("decoding requirements: %w", err)
	}

	skills := set.Skills[:0]
	for _, s := range set.Skills {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		if s.Weight <= 0 || s.Weight > 1 {
			s.Weight = defaultSkillWeight
		}
		skills = append(skills, s)
	}
	set.Skills = skills
	if len(set.Skills) == 0 {
		return nil, fmt.Errorf("no usable skills in provider output")
	}

	constraints := set.Constraints[:0]
	for _, c := range set.Constraints {
		c.Value = strings.ToLower(strings.TrimSpace(c.Value))
		if c.Type != ConstraintRenown {
			continue
		}
		switch c.Value {
		case RenownWantPopular, RenownWantHidden, RenownWantRising, RenownWantAny:
			constraints = append(constraints, c)
		}
	}
	set.Constraints = constraints
	return &set, nil
}

// queryStopWords covers filler and role words that carry no skill signal.
// "expert" and "developer" are here deliberately: "Kubernetes expert"
// should extract Kubernetes alone.
var queryStopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"with": {}, "without": {}, "for": {}, "in": {}, "on": {}, "of": {},
	"to": {}, "from": {}, "who": {}, "that": {}, "which": {},
	"can": {}, "could": {}, "should": {}, "must": {}, "will": {}, "would": {},
	"i": {}, "we": {}, "our": {}, "my": {}, "me": {}, "us": {},
	"need": {}, "needs": {}, "needed": {}, "looking": {}, "look": {},
	"want": {}, "wants": {}, "seeking": {}, "seek": {},
	"hire": {}, "hiring": {}, "find": {}, "someone": {}, "somebody": {},
	"person": {}, "people": {}, "candidate": {}, "candidates": {},
	"expert": {}, "experts": {}, "developer": {}, "developers": {},
	"engineer": {}, "engineers": {}, "specialist": {}, "specialists": {},
	"experienced": {}, "experience": {}, "years": {}, "year": {},
	"senior": {}, "junior": {}, "good": {}, "great": {}, "strong": {},
	"knows": {}, "know": {}, "skilled": {}, "is": {}, "are": {}, "has": {}, "have": {},
}

// heuristicRequirements is the no-LLM extraction path: keep the first
// few content-bearing tokens as skills at a uniform default weight.
func heuristicRequirements(rawQuery string) *RequirementSet {
	tokens := strings.FieldsFunc(rawQuery, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '+' && r != '#'
	})

	set := &RequirementSet{Summary: strings.TrimSpace(rawQuery)}
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if len(set.Skills) >= maxFallbackSkills {
			break
		}
		key := strings.ToLower(tok)
		if _, stop := queryStopWords[key]; stop {
			continue
		}
		if len([]rune(key)) < 2 {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		set.Skills = append(set.Skills, Requirement{Name: tok, Weight: defaultSkillWeight})
	}
	return set
}
