package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scoutline/scoutline/internal/db"
	"github.com/scoutline/scoutline/internal/embeddings"
	"github.com/scoutline/scoutline/internal/pipeline"
	"github.com/scoutline/scoutline/internal/resultcache"
	"github.com/scoutline/scoutline/internal/talent"
	"github.com/scoutline/scoutline/internal/trail"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	gateway := embeddings.NewGateway(nil, database)
	store := talent.NewStore(database)
	index, err := talent.NewIndex(gateway)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	trailStore := trail.NewStore(database)

	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Analyst:    pipeline.NewAnalyst(nil, "", trailStore),
		Retriever:  pipeline.NewRetriever(store, index, gateway, trailStore, 10, 100),
		Verifier:   pipeline.NewVerifier(trailStore),
		Ranker:     pipeline.NewRanker(nil, "", trailStore, 5),
		Trail:      trailStore,
		Cache:      resultcache.NewStore(database),
		Candidates: store,
	})

	return New(cfg, Deps{
		DB:           database,
		Candidates:   store,
		Index:        index,
		Trail:        trailStore,
		Orchestrator: orch,
	})
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0, AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestMatchRoutesMounted(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	// Seed one candidate through the API, then run a match query against it.
	payload := `{"name":"Ada Park","title":"Frontend Lead","bio":"React work","skills":[{"name":"React"}],"availability":"available"}`
	req := httptest.NewRequest("POST", "/api/candidates", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create candidate: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("POST", "/api/match/query", bytes.NewBufferString(`{"query":"React developer"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("match query: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp pipeline.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.QueryID == "" || len(resp.Matches) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}

	req = httptest.NewRequest("GET", "/api/match/queries/"+resp.QueryID, nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get query: expected 200, got %d", w.Code)
	}
}

func TestMatchQueryRejectsEmpty(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	req := httptest.NewRequest("POST", "/api/match/query", bytes.NewBufferString(`{"query":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
