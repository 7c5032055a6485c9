package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/resultcache"
	"github.com/scoutline/scoutline/internal/talent"
	"github.com/scoutline/scoutline/internal/trail"
)

// ErrEmptyQuery is returned for queries that are empty after trimming.
// Empty queries are rejected before any record is created.
var ErrEmptyQuery = errors.New("query text is required")

// Orchestrator runs the full matching pipeline for one query: cache lookup,
// then analyst, retriever, verifier, and ranker in strict sequence, with the
// query and task records bracketing the run.
type Orchestrator struct {
	analyst    *Analyst
	retriever  *Retriever
	verifier   *Verifier
	ranker     *Ranker
	trail      *trail.Store
	cache      *resultcache.Store
	candidates *talent.Store
	cacheTTL   time.Duration
}

// Deps carries the orchestrator's collaborators. All fields are required
// except CacheTTL, which defaults to one hour.
type Deps struct {
	Analyst    *Analyst
	Retriever  *Retriever
	Verifier   *Verifier
	Ranker     *Ranker
	Trail      *trail.Store
	Cache      *resultcache.Store
	Candidates *talent.Store
	CacheTTL   time.Duration
}

func NewOrchestrator(deps Deps) *Orchestrator {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Orchestrator{
		analyst:    deps.Analyst,
		retriever:  deps.Retriever,
		verifier:   deps.Verifier,
		ranker:     deps.Ranker,
		trail:      deps.Trail,
		cache:      deps.Cache,
		candidates: deps.Candidates,
		cacheTTL:   ttl,
	}
}

// ProcessQuery answers one free-text query. A fresh cache hit returns the
// stored response without creating new records; otherwise the pipeline runs
// end to end, the records are completed or failed, and the response is
// cached. Cache faults degrade to a normal pipeline run.
func (o *Orchestrator) ProcessQuery(ctx context.Context, rawQuery string) (*Response, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, ErrEmptyQuery
	}

	hash := resultcache.Hash(resultcache.Normalize(rawQuery))
	if resp := o.cachedResponse(ctx, hash); resp != nil {
		return resp, nil
	}

	q, err := o.trail.CreateQuery(ctx, rawQuery)
	if err != nil {
		return nil, fmt.Errorf("creating query record: %w", err)
	}
	task, err := o.trail.CreateTask(ctx, q.ID, PipelineStages)
	if err != nil {
		return nil, fmt.Errorf("creating task record: %w", err)
	}

	matches, err := o.runStages(ctx, q.ID, rawQuery)
	if err != nil {
		if ferr := o.trail.FailQuery(ctx, q.ID); ferr != nil {
			log.Printf("orchestrator: marking query %s failed: %v", q.ID, ferr)
		}
		if ferr := o.trail.FailTask(ctx, task.ID); ferr != nil {
			log.Printf("orchestrator: marking task %s failed: %v", task.ID, ferr)
		}
		return nil, err
	}

	resultIDs := make([]string, len(matches))
	for i, m := range matches {
		resultIDs[i] = m.CandidateID
	}
	if err := o.trail.CompleteQuery(ctx, q.ID, resultIDs); err != nil {
		return nil, fmt.Errorf("completing query record: %w", err)
	}
	if err := o.trail.CompleteTask(ctx, task.ID); err != nil {
		return nil, fmt.Errorf("completing task record: %w", err)
	}

	conversation, err := o.trail.Entries(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}

	resp := &Response{QueryID: q.ID, Matches: matches, Conversation: conversation}
	o.storeResponse(ctx, hash, rawQuery, resp)
	go o.recordMatches(resultIDs)
	return resp, nil
}

func (o *Orchestrator) runStages(ctx context.Context, queryID, rawQuery string) ([]MatchResult, error) {
	req, err := o.analyst.Analyze(ctx, queryID, rawQuery)
	if err != nil {
		return nil, err
	}
	shortlist, err := o.retriever.Retrieve(ctx, queryID, rawQuery, req)
	if err != nil {
		return nil, err
	}
	verified, err := o.verifier.Verify(ctx, queryID, shortlist)
	if err != nil {
		return nil, err
	}
	return o.ranker.Rank(ctx, queryID, rawQuery, req, verified)
}

// cachedResponse returns the stored response for a fresh cache entry, with
// a synthetic conversation entry prepended so callers can tell the response
// was served from cache. Any cache fault reads as a miss.
func (o *Orchestrator) cachedResponse(ctx context.Context, hash string) *Response {
	entry, ok, err := o.cache.Get(ctx, hash)
	if err != nil {
		log.Printf("orchestrator: result cache read failed: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	var resp Response
	if err := json.Unmarshal(entry.Payload, &resp); err != nil {
		log.Printf("orchestrator: discarding unreadable cache payload for %s: %v", hash, err)
		return nil
	}
	resp.Conversation = append([]trail.Entry{{
		QueryID:   resp.QueryID,
		Stage:     StageCache,
		Message:   fmt.Sprintf("served from result cache, expires %s", entry.ExpiresAt.Format(time.RFC3339)),
		CreatedAt: time.Now().UTC(),
	}}, resp.Conversation...)
	return &resp
}

func (o *Orchestrator) storeResponse(ctx context.Context, hash, rawQuery string, resp *Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("orchestrator: encoding response for cache: %v", err)
		return
	}
	expires := time.Now().UTC().Add(o.cacheTTL)
	if err := o.cache.Put(ctx, hash, rawQuery, payload, expires); err != nil {
		log.Printf("orchestrator: result cache write failed: %v", err)
	}
}

// recordMatches bumps the match counter for each returned candidate.
// Fire-and-forget: a failed bump never affects the response.
func (o *Orchestrator) recordMatches(ids []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, id := range ids {
		if err := o.candidates.IncrementMatchCount(ctx, id); err != nil {
			log.Printf("orchestrator: incrementing match count for %s: %v", id, err)
		}
	}
}
