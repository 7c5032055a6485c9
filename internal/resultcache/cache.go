package resultcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/db"
)

// Entry is one cached pipeline result, keyed by the normalized query hash.
type Entry struct {
	QueryHash string    `json:"query_hash"`
	QueryText string    `json:"query_text"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Normalize canonicalizes query text for cache keying: trim, case-fold,
// and collapse internal whitespace. Two queries that differ only in case
// or whitespace share a cache entry.
func Normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Hash returns the deterministic cache key for a normalized query.
func Hash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Store is the TTL'd result cache in front of the pipeline. SQLite has no
// native TTL sweep, so reads guard on the expiry timestamp and a periodic
// reaper deletes rows past expiry.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Get returns the cached entry for the query hash if it exists and has not
// expired. Expired rows are treated as misses; the reaper removes them later.
func (s *Store) Get(ctx context.Context, queryHash string) (*Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT query_hash, query_text, payload, created_at, expires_at
		FROM result_cache WHERE query_hash = ?`, queryHash)

	var (
		e                    Entry
		payload              string
		createdAt, expiresAt string
	)
	err := row.Scan(&e.QueryHash, &e.QueryText, &payload, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading result cache: %w", err)
	}

	e.Payload = []byte(payload)
	e.CreatedAt = parseTime(createdAt)
	e.ExpiresAt = parseTime(expiresAt)

	if !e.ExpiresAt.After(time.Now().UTC()) {
		return nil, false, nil
	}
	return &e, true, nil
}

// Put writes or overwrites the cache entry for a query hash. Last write wins;
// concurrent invocations of the same query converge on whichever finished last.
func (s *Store) Put(ctx context.Context, queryHash, queryText string, payload []byte, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO result_cache (query_hash, query_text, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(query_hash) DO UPDATE SET
			query_text = excluded.query_text,
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		queryHash, queryText, string(payload),
		time.Now().UTC().Format(time.RFC3339),
		expiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting result cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes all entries whose expiry has passed.
// Returns the number of deleted rows.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM result_cache WHERE expires_at <= ?",
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting expired cache entries: %w", err)
	}
	return res.RowsAffected()
}

// StartReaper launches a background sweep that runs DeleteExpired on the
// given interval until ctx is done. It returns immediately; the caller's
// goroutine is never tied up in the ticker loop.
func (s *Store) StartReaper(ctx context.Context, interval time.Duration, logf func(format string, args ...any)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.DeleteExpired(ctx)
				if err != nil {
					logf("result cache reaper: %v", err)
				} else if n > 0 {
					logf("result cache reaper: removed %d expired entries", n)
				}
			}
		}
	}()
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	return time.Time{}
}
