package mcp

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scoutline/scoutline/internal/pipeline"
	"github.com/scoutline/scoutline/internal/talent"
)

// handleMatchTalent runs the full pipeline and formats the ranked matches.
func (s *Server) handleMatchTalent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	resp, err := s.orch.ProcessQuery(ctx, query)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyQuery) {
			return mcp.NewToolResultError("query must not be empty"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("match failed: %v", err)), nil
	}

	if len(resp.Matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No matches for %q (query %s). The candidate store may be empty; ingest profiles with `scoutline seed`.", query, resp.QueryID)), nil
	}

	return mcp.NewToolResultText(formatMatches(resp)), nil
}

// handleSearchCandidates does a plain keyword search without ranking.
func (s *Server) handleSearchCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	terms, err := request.RequireString("terms")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: terms"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	pattern, err := termPattern(terms)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("bad search terms: %v", err)), nil
	}

	candidates, err := s.candidates.KeywordSearch(ctx, pattern, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(candidates) == 0 {
		return mcp.NewToolResultText("No candidates matched."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d candidates:\n\n", len(candidates))
	for _, c := range candidates {
		writeCandidate(&b, c)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleGetCandidate returns one profile by ID.
func (s *Server) handleGetCandidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("candidate_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: candidate_id"), nil
	}

	c, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	if c == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no candidate with ID %q", id)), nil
	}

	var b strings.Builder
	writeCandidate(&b, *c)
	fmt.Fprintf(&b, "Matched in %d past queries\n", c.MatchCount)
	return mcp.NewToolResultText(b.String()), nil
}

// handleGetQueryTrail returns the audit record and conversation for a query.
func (s *Server) handleGetQueryTrail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("query_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query_id"), nil
	}

	q, err := s.trail.GetQuery(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	if q == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no query with ID %q", id)), nil
	}

	entries, err := s.trail.Entries(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading trail failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query %s [%s]: %s\n", q.ID, q.Status, q.RawText)
	if len(q.ResultIDs) > 0 {
		fmt.Fprintf(&b, "Results: %s\n", strings.Join(q.ResultIDs, ", "))
	}
	b.WriteString("\nConversation:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "  [%s] %s\n", e.Stage, e.Message)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func termPattern(terms string) (*regexp.Regexp, error) {
	fields := strings.Fields(terms)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no terms given")
	}
	return talent.SearchPattern(fields)
}

func formatMatches(resp *pipeline.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query %s: %d matches\n\n", resp.QueryID, len(resp.Matches))
	for i, m := range resp.Matches {
		fmt.Fprintf(&b, "%d. %s", i+1, m.Name)
		if m.Title != "" {
			fmt.Fprintf(&b, " (%s)", m.Title)
		}
		fmt.Fprintf(&b, " — score %.2f [%s]\n", m.Score, m.CandidateID)
		for _, r := range m.Reasons {
			fmt.Fprintf(&b, "   - %s\n", r)
		}
	}
	return b.String()
}

func writeCandidate(b *strings.Builder, c talent.Candidate) {
	fmt.Fprintf(b, "%s [%s]", c.Name, c.ID)
	if c.Title != "" {
		fmt.Fprintf(b, " — %s", c.Title)
	}
	b.WriteString("\n")
	if len(c.Skills) > 0 {
		fmt.Fprintf(b, "  Skills: %s\n", strings.Join(c.SkillNames(), ", "))
	}
	fmt.Fprintf(b, "  Availability: %s", c.Availability)
	if c.RenownLevel != "" {
		fmt.Fprintf(b, ", renown: %s", c.RenownLevel)
	}
	b.WriteString("\n\n")
}
