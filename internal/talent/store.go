package talent

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scoutline/scoutline/internal/db"
)

// Store provides persistence for candidate profiles.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert inserts or updates a candidate. If the ID is empty a new one is
// generated. Returns the stored candidate.
func (s *Store) Upsert(ctx context.Context, c Candidate) (*Candidate, error) {
	if c.ID == "" {
		c.ID = "c-" + uuid.New().String()[:8]
	}
	if c.Availability == "" {
		c.Availability = AvailabilityUnknown
	}

	skills, err := json.Marshal(c.Skills)
	if err != nil {
		return nil, fmt.Errorf("marshalling skills: %w", err)
	}
	links, err := json.Marshal(c.Links)
	if err != nil {
		return nil, fmt.Errorf("marshalling links: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates (id, name, title, bio, skills, availability, renown_level, links, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			bio = excluded.bio,
			skills = excluded.skills,
			availability = excluded.availability,
			renown_level = excluded.renown_level,
			links = excluded.links,
			source = excluded.source,
			updated_at = datetime('now')`,
		c.ID, c.Name, c.Title, c.Bio, string(skills),
		c.Availability, string(c.RenownLevel), string(links), c.Source,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting candidate: %w", err)
	}

	return s.GetByID(ctx, c.ID)
}

// GetByID retrieves a single candidate.
func (s *Store) GetByID(ctx context.Context, id string) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM candidates WHERE id = ?", id)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting candidate %s: %w", id, err)
	}
	return c, nil
}

// GetMany retrieves candidates by ID, preserving the order of ids.
// Unknown ids are skipped.
func (s *Store) GetMany(ctx context.Context, ids []string) ([]Candidate, error) {
	result := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			result = append(result, *c)
		}
	}
	return result, nil
}

// List returns candidates ordered by creation time, newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM candidates ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

// Count returns the number of stored candidates.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates").Scan(&n)
	return n, err
}

// KeywordSearch scans candidate profiles and returns those whose skill names,
// title, or bio match the given pattern, up to limit. A nil pattern matches
// every candidate.
func (s *Store) KeywordSearch(ctx context.Context, pattern *regexp.Regexp, limit int) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" FROM candidates ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("scanning candidates: %w", err)
	}
	defer rows.Close()

	var matched []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		if pattern == nil || matchesKeyword(*c, pattern) {
			matched = append(matched, *c)
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched, rows.Err()
}

// SearchPattern compiles a case-insensitive alternation over the given terms
// for use with KeywordSearch. Each term gets a word boundary only on the
// sides where it starts or ends with a word character: a trailing `\b` after
// "C++" or "C#" can never match, since regexp boundaries need a word rune on
// one side of the transition.
func SearchPattern(terms []string) (*regexp.Regexp, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("no search terms given")
	}
	bounded := make([]string, len(terms))
	for i, term := range terms {
		bounded[i] = boundTerm(term)
	}
	pattern, err := regexp.Compile(`(?i)(?:` + strings.Join(bounded, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("compiling search pattern: %w", err)
	}
	return pattern, nil
}

func boundTerm(term string) string {
	quoted := regexp.QuoteMeta(term)
	runes := []rune(term)
	if len(runes) == 0 {
		return quoted
	}
	if isWordRune(runes[0]) {
		quoted = `\b` + quoted
	}
	if isWordRune(runes[len(runes)-1]) {
		quoted += `\b`
	}
	return quoted
}

// isWordRune mirrors regexp's \w class.
func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

func matchesKeyword(c Candidate, pattern *regexp.Regexp) bool {
	if pattern.MatchString(c.Title) || pattern.MatchString(c.Bio) {
		return true
	}
	for _, skill := range c.Skills {
		if pattern.MatchString(skill.Name) {
			return true
		}
	}
	return false
}

// IncrementMatchCount bumps the opaque match counter for a candidate.
// Callers treat this as fire-and-forget; the count is not read by any
// pipeline logic.
func (s *Store) IncrementMatchCount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE candidates SET match_count = match_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("incrementing match count for %s: %w", id, err)
	}
	return nil
}

// Delete removes a candidate.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM candidates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting candidate %s: %w", id, err)
	}
	return nil
}

const selectColumns = "SELECT id, name, title, bio, skills, availability, renown_level, links, source, match_count, created_at, updated_at"

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCandidate(sc scanner) (*Candidate, error) {
	var (
		c                    Candidate
		skillsJSON, links    string
		renown               string
		createdAt, updatedAt string
	)

	err := sc.Scan(
		&c.ID, &c.Name, &c.Title, &c.Bio, &skillsJSON,
		&c.Availability, &renown, &links, &c.Source, &c.MatchCount,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.RenownLevel = RenownLevel(renown)

	if err := json.Unmarshal([]byte(skillsJSON), &c.Skills); err != nil {
		c.Skills = nil
	}
	if err := json.Unmarshal([]byte(links), &c.Links); err != nil {
		c.Links = nil
	}

	c.CreatedAt = parseDBTime(createdAt)
	c.UpdatedAt = parseDBTime(updatedAt)

	return &c, nil
}

func collectCandidates(rows *sql.Rows) ([]Candidate, error) {
	var out []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func parseDBTime(s string) time.Time {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
