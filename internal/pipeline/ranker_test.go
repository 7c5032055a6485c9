package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/scoutline/scoutline/internal/db"
	"github.com/scoutline/scoutline/internal/talent"
	"github.com/scoutline/scoutline/internal/trail"
)

func TestRenownMatch(t *testing.T) {
	tests := []struct {
		want  string
		level talent.RenownLevel
		score float64
	}{
		{RenownWantPopular, talent.RenownFamous, 1.0},
		{RenownWantPopular, talent.RenownEstablished, 0.8},
		{RenownWantPopular, talent.RenownRising, 0.4},
		{RenownWantPopular, talent.RenownHidden, 0.1},
		{RenownWantHidden, talent.RenownHidden, 1.0},
		{RenownWantHidden, talent.RenownRising, 0.7},
		{RenownWantHidden, talent.RenownFamous, 0.2},
		{RenownWantHidden, talent.RenownEstablished, 0.2},
		{"", talent.RenownFamous, 0.5},
	}

	for _, tt := range tests {
		if got := renownMatch(tt.want, tt.level); got != tt.score {
			t.Errorf("renownMatch(%q, %q) = %v, want %v", tt.want, tt.level, got, tt.score)
		}
	}
}

func TestScoreCandidate(t *testing.T) {
	req := &RequirementSet{
		Skills: []Requirement{
			{Name: "React", Weight: 0.9},
			{Name: "Leadership", Weight: 0.6},
		},
		Constraints: []Constraint{{Type: ConstraintRenown, Value: RenownWantPopular}},
	}

	full := VerifiedCandidate{
		Candidate: talent.Candidate{
			Skills:      []talent.Skill{{Name: "React"}, {Name: "Leadership"}},
			RenownLevel: talent.RenownFamous,
		},
		Available: true,
	}
	// 0.7*1.0 + 0.3*1.0 + 0.1 caps at 1.
	if got := scoreCandidate(full, req); got != 1.0 {
		t.Errorf("full match score = %v, want 1.0", got)
	}

	partial := VerifiedCandidate{
		Candidate: talent.Candidate{
			Skills:      []talent.Skill{{Name: "react"}},
			RenownLevel: talent.RenownRising,
		},
	}
	want := 0.7*(0.9/1.5) + 0.3*0.4
	if got := scoreCandidate(partial, req); math.Abs(got-want) > 1e-9 {
		t.Errorf("partial match score = %v, want %v", got, want)
	}

	none := VerifiedCandidate{Candidate: talent.Candidate{RenownLevel: talent.RenownHidden}}
	if got := scoreCandidate(none, req); math.Abs(got-0.3*0.1) > 1e-9 {
		t.Errorf("no-skill score = %v, want %v", got, 0.3*0.1)
	}
}

func TestScoreCandidateNeutralDefaults(t *testing.T) {
	c := VerifiedCandidate{Candidate: talent.Candidate{RenownLevel: talent.RenownFamous}}

	// No skills and no renown constraint: both components read neutral.
	got := scoreCandidate(c, &RequirementSet{})
	if math.Abs(got-(0.7*0.5+0.3*0.5)) > 1e-9 {
		t.Errorf("neutral score = %v, want 0.5", got)
	}
}

func TestRankStableOrderAndLimit(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()
	trailStore := trail.NewStore(database)

	ctx := context.Background()
	q, err := trailStore.CreateQuery(ctx, "anyone")
	if err != nil {
		t.Fatalf("create query: %v", err)
	}

	// Seven identically-scored candidates: the rank limit keeps the first
	// five and the stable sort preserves their incoming order.
	var verified []VerifiedCandidate
	ids := []string{"c-a", "c-b", "c-c", "c-d", "c-e", "c-f", "c-g"}
	for _, id := range ids {
		verified = append(verified, VerifiedCandidate{
			Candidate: talent.Candidate{ID: id, Name: id},
		})
	}

	ranker := NewRanker(nil, "", trailStore, 5)
	matches, err := ranker.Rank(ctx, q.ID, "anyone", &RequirementSet{}, verified)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(matches) != 5 {
		t.Fatalf("got %d matches, want 5", len(matches))
	}
	for i, m := range matches {
		if m.CandidateID != ids[i] {
			t.Errorf("match[%d] = %s, want %s", i, m.CandidateID, ids[i])
		}
		if m.Reasons != nil {
			t.Errorf("match[%d] has reasons without a provider: %v", i, m.Reasons)
		}
		if m.Stage != StageRanker {
			t.Errorf("match[%d] stage = %q", i, m.Stage)
		}
	}

	entries, err := trailStore.Entries(ctx, q.ID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Stage != StageRanker {
		t.Fatalf("expected one ranker entry, got %+v", entries)
	}
}

func TestVerifyIsAdditive(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()
	trailStore := trail.NewStore(database)

	ctx := context.Background()
	q, err := trailStore.CreateQuery(ctx, "anyone")
	if err != nil {
		t.Fatalf("create query: %v", err)
	}

	in := []talent.Candidate{
		{ID: "c-1", Name: "Ada", Title: "Engineer", Bio: "bio", Skills: []talent.Skill{{Name: "Go"}}, Availability: talent.AvailabilityAvailable, Links: []string{"https://example.com/ada"}},
		{ID: "c-2", Name: "Bob"},
	}

	out, err := NewVerifier(trailStore).Verify(ctx, q.ID, in)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("cardinality changed: %d -> %d", len(in), len(out))
	}
	for i := range in {
		if out[i].ID != in[i].ID {
			t.Errorf("order changed at %d: %s != %s", i, out[i].ID, in[i].ID)
		}
	}
	if !out[0].ProfileComplete || !out[0].HasValidationLinks || !out[0].Available {
		t.Errorf("annotations for complete profile: %+v", out[0])
	}
	if out[1].ProfileComplete || out[1].HasValidationLinks || out[1].Available {
		t.Errorf("annotations for bare profile: %+v", out[1])
	}

	verifiedEmpty, err := NewVerifier(trailStore).Verify(ctx, q.ID, nil)
	if err != nil {
		t.Fatalf("Verify(nil): %v", err)
	}
	if len(verifiedEmpty) != 0 {
		t.Errorf("expected empty output for empty input")
	}
}
