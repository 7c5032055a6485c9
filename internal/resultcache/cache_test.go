package resultcache

import (
	"context"
	"testing"
	"time"

	"github.com/scoutline/scoutline/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"React Developer", "react developer"},
		{"  react   developer  ", "react developer"},
		{"REACT\tdeveloper\n", "react developer"},
		{"react developer", "react developer"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashStableAcrossEquivalentQueries(t *testing.T) {
	a := Hash(Normalize("React Developer"))
	b := Hash(Normalize("  react   DEVELOPER "))
	if a != b {
		t.Error("equivalent queries must hash identically")
	}

	c := Hash(Normalize("python developer"))
	if a == c {
		t.Error("distinct queries must not collide")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	hash := Hash("react developer")
	payload := []byte(`{"matches":[]}`)

	if err := store.Put(ctx, hash, "React Developer", payload, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, hit, err := store.Get(ctx, hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if string(entry.Payload) != string(payload) {
		t.Errorf("payload mismatch: %s", entry.Payload)
	}
	if entry.QueryText != "React Developer" {
		t.Errorf("expected original query text preserved, got %q", entry.QueryText)
	}
}

func TestMissForUnknownHash(t *testing.T) {
	store := setupTestStore(t)

	_, hit, err := store.Get(context.Background(), Hash("never cached"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected miss")
	}
}

func TestExpiredEntryIsMiss(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	hash := Hash("stale query")
	if err := store.Put(ctx, hash, "stale query", []byte("{}"), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, hit, err := store.Get(ctx, hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expired entry must read as a miss")
	}
}

func TestUpsertOverwrites(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	hash := Hash("query")
	store.Put(ctx, hash, "query", []byte("v1"), time.Now().Add(time.Hour))
	store.Put(ctx, hash, "query", []byte("v2"), time.Now().Add(time.Hour))

	entry, hit, _ := store.Get(ctx, hash)
	if !hit {
		t.Fatal("expected hit")
	}
	if string(entry.Payload) != "v2" {
		t.Errorf("expected last write to win, got %s", entry.Payload)
	}
}

func TestDeleteExpired(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.Put(ctx, Hash("old"), "old", []byte("{}"), time.Now().Add(-time.Hour))
	store.Put(ctx, Hash("fresh"), "fresh", []byte("{}"), time.Now().Add(time.Hour))

	n, err := store.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted row, got %d", n)
	}

	_, hit, _ := store.Get(ctx, Hash("fresh"))
	if !hit {
		t.Error("fresh entry should survive the sweep")
	}
}

func TestStartReaperDoesNotBlockCaller(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store.Put(ctx, Hash("old"), "old", []byte("{}"), time.Now().Add(-time.Hour))

	returned := make(chan struct{})
	go func() {
		store.StartReaper(ctx, 5*time.Millisecond, func(string, ...any) {})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("StartReaper did not return control to the caller")
	}

	// The sweep still runs in the background.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var n int
		if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM result_cache").Scan(&n); err != nil {
			t.Fatalf("counting rows: %v", err)
		}
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expired entry not reaped, %d rows remain", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
