package embeddings

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/scoutline/scoutline/internal/db"
)

// stubEmbedder counts calls and returns a fixed vector, or errors on demand.
type stubEmbedder struct {
	mu    sync.Mutex
	calls int
	vec   []float32
	err   error
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls += len(texts)
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return len(s.vec) }
func (s *stubEmbedder) Name() string    { return "stub" }

func (s *stubEmbedder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func setupGateway(t *testing.T, inner Embedder) *Gateway {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewGateway(inner, database)
}

func TestGatewayCachesByContentHash(t *testing.T) {
	stub := &stubEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	gw := setupGateway(t, stub)
	ctx := context.Background()

	first, err := gw.Embed(ctx, []string{"golang expert"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	second, err := gw.Embed(ctx, []string{"golang expert"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if stub.callCount() != 1 {
		t.Errorf("expected 1 provider call, got %d", stub.callCount())
	}
	if len(first[0]) != 3 || len(second[0]) != 3 {
		t.Fatalf("unexpected vector lengths %d/%d", len(first[0]), len(second[0]))
	}
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("cached vector differs at %d: %v vs %v", i, first[0][i], second[0][i])
		}
	}
}

func TestGatewayDistinctTextsMiss(t *testing.T) {
	stub := &stubEmbedder{vec: []float32{1, 0}}
	gw := setupGateway(t, stub)
	ctx := context.Background()

	if _, err := gw.Embed(ctx, []string{"react", "python"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if stub.callCount() != 2 {
		t.Errorf("expected 2 provider calls, got %d", stub.callCount())
	}
}

func TestGatewayProviderFailureDegrades(t *testing.T) {
	stub := &stubEmbedder{vec: []float32{1, 0, 0, 0}, err: errors.New("provider down")}
	gw := setupGateway(t, stub)
	ctx := context.Background()

	vecs, err := gw.Embed(ctx, []string{"kubernetes"})
	if err != nil {
		t.Fatalf("degraded embed should not error: %v", err)
	}
	if len(vecs[0]) != stub.Dimensions() {
		t.Errorf("expected fallback vector of %d dims, got %d", stub.Dimensions(), len(vecs[0]))
	}

	// Fallback vectors must not be cached: a recovered provider should get
	// the next call.
	store := NewCacheStore(gw.cache.db)
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty cache after fallback, got %d entries", n)
	}
}

func TestGatewayNoProviderConfigured(t *testing.T) {
	gw := setupGateway(t, nil)

	vecs, err := gw.Embed(context.Background(), []string{"anything"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs[0]) != FallbackDimensions {
		t.Errorf("expected %d dims, got %d", FallbackDimensions, len(vecs[0]))
	}
}

func TestFallbackVectorIsUnitLength(t *testing.T) {
	vec := fallbackVector(ContentHash("some text"), 64)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1) > 1e-4 {
		t.Errorf("expected unit-length vector, got norm %f", norm)
	}

	// Same text, same fallback.
	again := fallbackVector(ContentHash("some text"), 64)
	for i := range vec {
		if vec[i] != again[i] {
			t.Fatal("fallback vector not deterministic for identical text")
		}
	}
}

func TestCacheStoreUpsert(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	store := NewCacheStore(database)
	ctx := context.Background()
	hash := ContentHash("text")

	if err := store.Put(ctx, hash, "text", []float32{1, 2}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, hash, "text", []float32{3, 4}); err != nil {
		t.Fatalf("Put upsert: %v", err)
	}

	vec, ok, err := store.Get(ctx, hash)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if vec[0] != 3 || vec[1] != 4 {
		t.Errorf("expected last write to win, got %v", vec)
	}

	n, _ := store.Count(ctx)
	if n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}
