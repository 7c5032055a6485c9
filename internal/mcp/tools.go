package mcp

import "github.com/mark3labs/mcp-go/mcp"

// matchTalentTool defines the match_talent MCP tool.
var matchTalentTool = mcp.NewTool("match_talent",
	mcp.WithDescription("Run the full talent matching pipeline for a hiring query. Returns ranked candidates with scores and reasons."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language hiring query, e.g. 'React developer who can lead a team'"),
	),
)

// searchCandidatesTool defines the search_candidates MCP tool.
var searchCandidatesTool = mcp.NewTool("search_candidates",
	mcp.WithDescription("Keyword search over candidate profiles. Cheaper than match_talent; no ranking or explanation."),
	mcp.WithString("terms",
		mcp.Required(),
		mcp.Description("Space-separated search terms matched against titles, bios, and skills"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of candidates to return (default 10)"),
	),
)

// getCandidateTool defines the get_candidate MCP tool.
var getCandidateTool = mcp.NewTool("get_candidate",
	mcp.WithDescription("Get one candidate profile by ID."),
	mcp.WithString("candidate_id",
		mcp.Required(),
		mcp.Description("Candidate ID, e.g. c-1a2b3c4d"),
	),
)

// getQueryTrailTool defines the get_query_trail MCP tool.
var getQueryTrailTool = mcp.NewTool("get_query_trail",
	mcp.WithDescription("Get the audit record and conversation trail for a past match query."),
	mcp.WithString("query_id",
		mcp.Required(),
		mcp.Description("Query ID, e.g. q-1a2b3c4d"),
	),
)
