package embeddings

import (
	"context"
	"encoding/binary"
	"log"
	"math"
	"math/rand"

	"github.com/scoutline/scoutline/internal/db"
)

// FallbackDimensions is the vector size used when no provider is configured
// and the gateway has no other source of dimensionality.
const FallbackDimensions = 1024

const previewLen = 80

// Gateway is a lookaside cache in front of an Embedder. Identical text always
// resolves to the same cache key, and cached vectors never go stale, so hits
// bypass the provider entirely. When the provider fails or none is configured,
// the gateway degrades to a pseudo-random unit-scale vector instead of
// returning an error: callers still get a similarity ranking, just not a
// meaningful one.
type Gateway struct {
	inner Embedder
	cache *CacheStore
}

// NewGateway wraps the given embedder with a cache backed by the database.
// inner may be nil when no provider credential is configured; every embed
// then takes the degraded fallback path.
func NewGateway(inner Embedder, database *db.DB) *Gateway {
	return &Gateway{
		inner: inner,
		cache: NewCacheStore(database),
	}
}

func (g *Gateway) Name() string {
	if g.inner == nil {
		return "fallback"
	}
	return g.inner.Name()
}

func (g *Gateway) Dimensions() int {
	if g.inner == nil {
		return FallbackDimensions
	}
	return g.inner.Dimensions()
}

// Embed resolves each text through the cache, calling the provider only on
// misses. Provider failures are absorbed: the affected texts get fallback
// vectors and are not written to the cache.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	for i, text := range texts {
		hash := ContentHash(text)

		if vec, ok, err := g.cache.Get(ctx, hash); err == nil && ok {
			results[i] = vec
			continue
		} else if err != nil {
			log.Printf("embeddings: cache read failed for %s: %v", hash[:12], err)
		}

		vec := g.embedOne(ctx, text, hash)
		results[i] = vec
	}

	return results, nil
}

func (g *Gateway) embedOne(ctx context.Context, text, hash string) []float32 {
	if g.inner == nil {
		log.Printf("embeddings: no provider configured, using fallback vector for %s", hash[:12])
		return fallbackVector(hash, FallbackDimensions)
	}

	vecs, err := g.inner.Embed(ctx, []string{text})
	if err != nil || len(vecs) == 0 || len(vecs[0]) == 0 {
		log.Printf("embeddings: provider %s failed (%v), using fallback vector for %s", g.inner.Name(), err, hash[:12])
		return fallbackVector(hash, g.inner.Dimensions())
	}

	preview := text
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	if err := g.cache.Put(ctx, hash, preview, vecs[0]); err != nil {
		log.Printf("embeddings: cache write failed for %s: %v", hash[:12], err)
	}

	return vecs[0]
}

// fallbackVector builds a pseudo-random unit-length vector seeded from the
// content hash, so repeated degraded embeds of the same text agree with each
// other within a process run and across runs.
func fallbackVector(contentHash string, dims int) []float32 {
	seed := int64(binary.LittleEndian.Uint64([]byte(contentHash[:8])))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, dims)
	var norm float64
	for i := range vec {
		v := rng.Float64()*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
