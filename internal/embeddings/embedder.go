package embeddings

import "context"

// Embedder turns text into vectors for candidate-profile similarity search.
// Both sides of a match go through the same implementation: profile text at
// ingest time and hiring queries at retrieval time live in one vector space.
// Callers normally hold a Gateway rather than a provider embedder directly,
// so repeated texts resolve from the cache.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the width of the vectors this embedder produces.
	Dimensions() int

	// Name identifies the backing model, for logs and diagnostics.
	Name() string
}
