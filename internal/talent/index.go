package talent

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/scoutline/scoutline/internal/embeddings"
)

const collectionName = "candidates"

// Hit is a single similarity-search result from the index.
type Hit struct {
	CandidateID string
	Similarity  float32
}

// Index is the in-process vector index over candidate profile text.
// It is provisioned explicitly at startup from the candidate store,
// never lazily on first use.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
}

// NewIndex creates an empty in-memory index. Profile text is embedded
// through the given embedder (normally the caching gateway).
func NewIndex(embedder embeddings.Embedder) (*Index, error) {
	cdb := chromem.NewDB()
	col, err := cdb.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{db: cdb, collection: col, embedder: embedder}, nil
}

// Add embeds and indexes the given candidates. Re-adding a candidate ID
// replaces its previous document.
func (ix *Index) Add(ctx context.Context, candidates ...Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(candidates))
	for _, c := range candidates {
		text := c.ProfileText()
		vecs, err := ix.embedder.Embed(ctx, []string{text})
		if err != nil {
			return fmt.Errorf("embedding candidate %s: %w", c.ID, err)
		}
		var embedding []float32
		if len(vecs) > 0 {
			embedding = vecs[0]
		}
		docs = append(docs, chromem.Document{
			ID:        c.ID,
			Content:   text,
			Embedding: embedding,
			Metadata: map[string]string{
				"name":   c.Name,
				"renown": string(c.RenownLevel),
			},
		})
	}

	return ix.collection.AddDocuments(ctx, docs, 1)
}

// SearchVector runs an approximate-nearest-neighbor query with the given
// query embedding. pool is the candidate-pool size requested from the index;
// it is clamped to the collection size.
func (ix *Index) SearchVector(ctx context.Context, queryVec []float32, pool int) ([]Hit, error) {
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if pool <= 0 || pool > count {
		pool = count
	}

	results, err := ix.collection.QueryEmbedding(ctx, queryVec, pool, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{CandidateID: r.ID, Similarity: r.Similarity}
	}
	return hits, nil
}

// Count returns the number of indexed candidates.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

// BuildFrom indexes every candidate in the store. Called once at process
// start as the explicit provisioning step.
func (ix *Index) BuildFrom(ctx context.Context, store *Store) (int, error) {
	const page = 200

	total := 0
	for offset := 0; ; offset += page {
		batch, err := store.List(ctx, page, offset)
		if err != nil {
			return total, fmt.Errorf("loading candidates: %w", err)
		}
		if len(batch) == 0 {
			return total, nil
		}
		if err := ix.Add(ctx, batch...); err != nil {
			return total, err
		}
		total += len(batch)
	}
}
