package talent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// seedFile is the on-disk JSON shape accepted by LoadSeedFile: either a
// single candidate object or an array of them.
type seedFile []Candidate

// LoadSeedFile parses a candidate JSON file.
func LoadSeedFile(path string) ([]Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var many seedFile
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}

	var one Candidate
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return []Candidate{one}, nil
}

// Ingest upserts candidates into the store and, when an index is supplied,
// embeds and indexes them. Returns the stored candidates.
func Ingest(ctx context.Context, store *Store, index *Index, candidates []Candidate) ([]Candidate, error) {
	stored := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		saved, err := store.Upsert(ctx, c)
		if err != nil {
			return stored, fmt.Errorf("storing candidate %q: %w", c.Name, err)
		}
		stored = append(stored, *saved)
	}

	if index != nil {
		if err := index.Add(ctx, stored...); err != nil {
			return stored, fmt.Errorf("indexing candidates: %w", err)
		}
	}

	return stored, nil
}
