package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/calyra/flowaudit/internal/diagram"
	"github.com/calyra/flowaudit/internal/logging"
	"github.com/calyra/flowaudit/internal/normalize"
	"github.com/calyra/flowaudit/internal/store"
	"github.com/calyra/flowaudit/pkg/schema"
)

// handleAnalyze validates, analyzes, and optionally persists a workflow document.
func (s *FlowauditServer) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := s.parseDocument(req)
	if errResult != nil {
		return errResult, nil
	}
	locationID := req.GetString("location_id", "")
	save := req.GetBool("save", false)
	cacheTTL := req.GetString("cache_ttl", "")

	ctx = logging.WithLocationID(ctx, locationID)

	// TTL cache: a fresh-enough stored result short-circuits the analysis.
	if cacheTTL != "" && s.store != nil && doc.ID != "" {
		if ttl, err := time.ParseDuration(cacheTTL); err == nil {
			if rec, err := s.store.LatestAnalysis(ctx, doc.ID, ttl); err == nil {
				return marshalResult(rec.Result)
			}
		}
	}

	result := s.analyzer.Analyze(ctx, doc)

	if save {
		if s.store == nil {
			return mcp.NewToolResultError("save requested but persistence is disabled"), nil
		}
		rec := &store.AnalysisRecord{
			ID:           uuid.New().String(),
			LocationID:   locationID,
			WorkflowID:   result.WorkflowID,
			WorkflowName: result.WorkflowName,
			HealthScore:  result.HealthScore,
			Grade:        result.Grade,
			Result:       result,
			CreatedAt:    result.Timestamp,
		}
		if err := s.store.SaveAnalysis(ctx, rec); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to persist analysis: %v", err)), nil
		}
	}

	return marshalResult(result)
}

// handleDiagram renders a document as a Mermaid flowchart with severity overlay.
func (s *FlowauditServer) handleDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := s.parseDocument(req)
	if errResult != nil {
		return errResult, nil
	}

	result := s.analyzer.Analyze(ctx, doc)
	graph := normalize.Normalize(doc)

	title := doc.Name
	if title == "" {
		title = "Workflow"
	}
	model := diagram.Build(title, graph, result.Issues)
	return mcp.NewToolResultText(diagram.RenderMermaid(model)), nil
}

// handleHistory lists stored analyses for a workflow, newest first.
func (s *FlowauditServer) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("persistence is disabled"), nil
	}
	workflowID, err := req.RequireString("workflow_id")
	if err != nil {
		return mcp.NewToolResultError("workflow_id is required"), nil
	}
	limit := req.GetInt("limit", 20)

	records, listErr := s.store.ListAnalyses(ctx, store.AnalysisFilter{
		WorkflowID: workflowID,
		Limit:      limit,
	})
	if listErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history query failed: %v", listErr)), nil
	}
	return marshalResult(records)
}

// handleQuery runs a jq expression over the latest stored result of a workflow.
func (s *FlowauditServer) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("persistence is disabled"), nil
	}
	workflowID, err := req.RequireString("workflow_id")
	if err != nil {
		return mcp.NewToolResultError("workflow_id is required"), nil
	}
	expression, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError("expression is required"), nil
	}

	rec, getErr := s.store.LatestAnalysis(ctx, workflowID, 24*365*time.Hour)
	if getErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no stored analysis for workflow %q", workflowID)), nil
	}

	// Round-trip to a plain map so jq sees JSON field names.
	data, mapErr := resultAsMap(rec.Result)
	if mapErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to prepare result: %v", mapErr)), nil
	}

	out, evalErr := s.jq.Evaluate(ctx, expression, data)
	if evalErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", evalErr)), nil
	}
	return marshalResult(out)
}

// handleSchedule registers a periodic scan.
func (s *FlowauditServer) handleSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("persistence is disabled"), nil
	}
	workflowID, err := req.RequireString("workflow_id")
	if err != nil {
		return mcp.NewToolResultError("workflow_id is required"), nil
	}
	documentPath, err := req.RequireString("document_path")
	if err != nil {
		return mcp.NewToolResultError("document_path is required"), nil
	}
	cronExpr, err := req.RequireString("cron")
	if err != nil {
		return mcp.NewToolResultError("cron is required"), nil
	}

	schedule, parseErr := s.cronParser.Parse(cronExpr)
	if parseErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid cron expression %q: %v", cronExpr, parseErr)), nil
	}

	now := time.Now().UTC()
	next := schedule.Next(now)
	scan := &store.ScheduledScan{
		ID:              uuid.New().String(),
		LocationID:      req.GetString("location_id", ""),
		WorkflowID:      workflowID,
		DocumentPath:    documentPath,
		CronExpression:  cronExpr,
		AlertExpression: req.GetString("alert_expression", ""),
		Enabled:         true,
		NextRunAt:       &next,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if createErr := s.store.CreateScheduledScan(ctx, scan); createErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create scheduled scan: %v", createErr)), nil
	}
	return marshalResult(scan)
}

// parseDocument extracts and boundary-validates the document argument.
// Returns a non-nil tool error result when the document is unusable.
func (s *FlowauditServer) parseDocument(req mcp.CallToolRequest) (*schema.WorkflowDocument, *mcp.CallToolResult) {
	raw := mcp.ParseStringMap(req, "document", nil)
	if raw == nil {
		return nil, mcp.NewToolResultError("document is required")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("document is not JSON-serializable: %v", err))
	}
	if s.validator != nil {
		if err := s.validator.ValidateRaw(data); err != nil {
			return nil, mcp.NewToolResultError(fmt.Sprintf("document failed boundary validation: %v", err))
		}
	}
	doc, err := schema.ParseDocument(data)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("document parse failed: %v", err))
	}
	return doc, nil
}

// resultAsMap round-trips an AnalysisResult through JSON into a plain map.
func resultAsMap(result *schema.AnalysisResult) (map[string]any, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// marshalResult renders any value as an indented-JSON tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
