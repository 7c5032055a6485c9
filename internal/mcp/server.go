package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/scoutline/scoutline/internal/pipeline"
	"github.com/scoutline/scoutline/internal/talent"
	"github.com/scoutline/scoutline/internal/trail"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes talent matching tools over stdio.
type Server struct {
	orch       *pipeline.Orchestrator
	candidates *talent.Store
	trail      *trail.Store
	mcp        *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(orch *pipeline.Orchestrator, candidates *talent.Store, trailStore *trail.Store) *Server {
	s := &Server{
		orch:       orch,
		candidates: candidates,
		trail:      trailStore,
	}

	s.mcp = server.NewMCPServer(
		"scoutline",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(matchTalentTool, s.handleMatchTalent)
	s.mcp.AddTool(searchCandidatesTool, s.handleSearchCandidates)
	s.mcp.AddTool(getCandidateTool, s.handleGetCandidate)
	s.mcp.AddTool(getQueryTrailTool, s.handleGetQueryTrail)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
