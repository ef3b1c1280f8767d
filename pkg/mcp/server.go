package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron/v3"

	"github.com/calyra/flowaudit/internal/analyzer"
	"github.com/calyra/flowaudit/internal/expressions"
	"github.com/calyra/flowaudit/internal/store"
	"github.com/calyra/flowaudit/internal/validation"
)

// ServerDeps holds the dependencies for creating a FlowauditServer.
// Store may be nil; history, query, and schedule tools then report that
// persistence is disabled.
type ServerDeps struct {
	Analyzer  *analyzer.Analyzer
	Store     store.Store
	Validator *validation.DocumentValidator
	Logger    *slog.Logger
}

// FlowauditServer wraps an MCP server with flowaudit-specific tool handlers.
type FlowauditServer struct {
	analyzer   *analyzer.Analyzer
	store      store.Store
	validator  *validation.DocumentValidator
	jq         *expressions.GoJQEngine
	cronParser cron.Parser
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// NewFlowauditServer creates a FlowauditServer with all 5 tools registered.
func NewFlowauditServer(deps ServerDeps) *FlowauditServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &FlowauditServer{
		analyzer:   deps.Analyzer,
		store:      deps.Store,
		validator:  deps.Validator,
		jq:         expressions.NewGoJQEngine(),
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		logger:     logger,
	}

	mcpSrv := server.NewMCPServer(
		"flowaudit",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Flowaudit statically analyzes automation workflows for structural and configuration defects. Use flowaudit.analyze to score a workflow document, flowaudit.diagram to render it as a Mermaid flowchart, flowaudit.history to read past scores, flowaudit.query to extract result fields with jq, and flowaudit.schedule to register periodic scans."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *FlowauditServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *FlowauditServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the 5 registered MCP tools as ServerTool entries.
func (s *FlowauditServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: analyzeTool(), Handler: s.handleAnalyze},
		{Tool: diagramTool(), Handler: s.handleDiagram},
		{Tool: historyTool(), Handler: s.handleHistory},
		{Tool: queryTool(), Handler: s.handleQuery},
		{Tool: scheduleTool(), Handler: s.handleSchedule},
	}
}

// --- Tool definitions ---

func analyzeTool() mcp.Tool {
	return mcp.NewTool("flowaudit.analyze",
		mcp.WithDescription("Analyze a workflow document and return its health score, issues, and recommendations"),
		mcp.WithObject("document", mcp.Required(), mcp.Description("The raw workflow document (legacy or modern shape)")),
		mcp.WithString("location_id", mcp.Description("Location the workflow belongs to, recorded with the result")),
		mcp.WithBoolean("save", mcp.Description("Persist the result into analysis history (default: false)")),
		mcp.WithString("cache_ttl", mcp.Description("Serve a stored result no older than this duration (e.g. \"15m\") instead of re-analyzing")),
	)
}

func diagramTool() mcp.Tool {
	return mcp.NewTool("flowaudit.diagram",
		mcp.WithDescription("Render a workflow document as a Mermaid flowchart with issue-severity highlighting"),
		mcp.WithObject("document", mcp.Required(), mcp.Description("The raw workflow document (legacy or modern shape)")),
	)
}

func historyTool() mcp.Tool {
	return mcp.NewTool("flowaudit.history",
		mcp.WithDescription("List stored analysis results for a workflow, newest first"),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow to read history for")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records (default: 20)")),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool("flowaudit.query",
		mcp.WithDescription("Run a jq expression over the latest stored analysis result of a workflow"),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow whose latest result is queried")),
		mcp.WithString("expression", mcp.Required(), mcp.Description("jq expression, e.g. \".issues[] | select(.severity == \\\"critical\\\")\"")),
	)
}

func scheduleTool() mcp.Tool {
	return mcp.NewTool("flowaudit.schedule",
		mcp.WithDescription("Register a periodic scan of a workflow document"),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow ID the scan covers")),
		mcp.WithString("document_path", mcp.Required(), mcp.Description("Path to the workflow document JSON file")),
		mcp.WithString("cron", mcp.Required(), mcp.Description("Cron expression, standard 5-field format")),
		mcp.WithString("alert_expression", mcp.Description("Threshold predicate over the result, e.g. \"healthScore < 50\"")),
		mcp.WithString("location_id", mcp.Description("Location the workflow belongs to")),
	)
}
