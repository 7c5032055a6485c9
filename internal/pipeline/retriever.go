package pipeline

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"github.com/scoutline/scoutline/internal/embeddings"
	"github.com/scoutline/scoutline/internal/talent"
	"github.com/scoutline/scoutline/internal/trail"
)

// Retriever narrows the candidate store to a shortlist for one query.
// The primary path is vector similarity over the index; keyword search
// over the store is the fallback when the vector path errors, returns
// nothing, or the renown post-filter empties the pool.
type Retriever struct {
	store    *talent.Store
	index    *talent.Index
	embedder embeddings.Embedder
	trail    *trail.Store
	limit    int
	pool     int
}

func NewRetriever(store *talent.Store, index *talent.Index, embedder embeddings.Embedder, trailStore *trail.Store, limit, pool int) *Retriever {
	if limit <= 0 {
		limit = 10
	}
	if pool < limit {
		pool = limit * 10
	}
	return &Retriever{store: store, index: index, embedder: embedder, trail: trailStore, limit: limit, pool: pool}
}

// Retrieve returns up to the retrieval limit of candidates for the query.
// Errors surface only from the candidate or trail store; retrieval-method
// faults degrade to the keyword fallback.
func (r *Retriever) Retrieve(ctx context.Context, queryID, rawQuery string, req *RequirementSet) ([]talent.Candidate, error) {
	method := "vector"
	candidates, err := r.vectorSearch(ctx, rawQuery, req)
	if err != nil {
		log.Printf("retriever: vector search failed, falling back to keyword: %v", err)
		candidates = nil
	}
	if len(candidates) == 0 {
		method = "keyword"
		candidates, err = r.keywordSearch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("keyword retrieval: %w", err)
		}
	}

	msg := fmt.Sprintf("retrieved %d candidates via %s search", len(candidates), method)
	if err := r.trail.AppendEntry(ctx, queryID, StageRetriever, msg, ""); err != nil {
		return nil, fmt.Errorf("recording retriever entry: %w", err)
	}
	return candidates, nil
}

func (r *Retriever) vectorSearch(ctx context.Context, rawQuery string, req *RequirementSet) ([]talent.Candidate, error) {
	vecs, err := r.embedder.Embed(ctx, []string{rawQuery})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding query: empty result")
	}

	hits, err := r.index.SearchVector(ctx, vecs[0], r.pool)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.CandidateID
	}
	candidates, err := r.store.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading retrieved candidates: %w", err)
	}

	if want, ok := req.RenownConstraint(); ok {
		candidates = filterByRenown(candidates, want)
	}
	if len(candidates) > r.limit {
		candidates = candidates[:r.limit]
	}
	return candidates, nil
}

func (r *Retriever) keywordSearch(ctx context.Context, req *RequirementSet) ([]talent.Candidate, error) {
	pattern, err := skillPattern(req.Skills)
	if err != nil {
		return nil, err
	}
	return r.store.KeywordSearch(ctx, pattern, r.limit)
}

// skillPattern compiles the requirement skill names into a keyword-search
// pattern. A nil pattern means no skills were extracted and the search
// degenerates to "any candidate".
func skillPattern(skills []Requirement) (*regexp.Regexp, error) {
	if len(skills) == 0 {
		return nil, nil
	}
	terms := make([]string, len(skills))
	for i, s := range skills {
		terms[i] = s.Name
	}
	return talent.SearchPattern(terms)
}

// renownLevels maps a requested renown constraint to the candidate levels
// that satisfy it.
var renownLevels = map[string][]talent.RenownLevel{
	RenownWantPopular: {talent.RenownFamous, talent.RenownEstablished},
	RenownWantHidden:  {talent.RenownHidden, talent.RenownRising},
	RenownWantRising:  {talent.RenownRising},
}

func filterByRenown(candidates []talent.Candidate, want string) []talent.Candidate {
	allowed, ok := renownLevels[want]
	if !ok {
		return candidates
	}
	out := candidates[:0]
	for _, c := range candidates {
		for _, lvl := range allowed {
			if c.RenownLevel == lvl {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
