package embeddings

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/scoutline/scoutline/internal/db"
)

// ContentHash returns the deterministic hash used as the embedding cache key.
// The hash covers the exact input text; no normalization is applied here.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CacheStore persists embedding vectors keyed by content hash.
// Entries never expire: identical text always embeds to the same vector.
type CacheStore struct {
	db *db.DB
}

// NewCacheStore creates a CacheStore backed by the given database.
func NewCacheStore(database *db.DB) *CacheStore {
	return &CacheStore{db: database}
}

// Get returns the cached vector for the given content hash, or false on miss.
func (s *CacheStore) Get(ctx context.Context, contentHash string) ([]float32, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT vector FROM embedding_cache WHERE content_hash = ?", contentHash,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying embedding cache: %w", err)
	}

	vec, err := decodeVector(blob)
	if err != nil {
		return nil, false, fmt.Errorf("decoding cached vector: %w", err)
	}
	return vec, true, nil
}

// Put stores a vector under the given content hash. Writes are upserts:
// concurrent misses for the same text converge to the same value, so
// last-write-wins is safe.
func (s *CacheStore) Put(ctx context.Context, contentHash, preview string, vector []float32) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embedding_cache (content_hash, text_preview, vector)
		VALUES (?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			text_preview = excluded.text_preview,
			vector = excluded.vector`,
		contentHash, preview, encodeVector(vector),
	)
	if err != nil {
		return fmt.Errorf("upserting embedding cache entry: %w", err)
	}
	return nil
}

// Count returns the number of cached embeddings.
func (s *CacheStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embedding_cache").Scan(&n)
	return n, err
}

// encodeVector packs a float32 slice into a little-endian byte blob.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector unpacks a blob produced by encodeVector.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
