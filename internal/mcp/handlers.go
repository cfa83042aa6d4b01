// ABOUTME: MCP tool handler implementations for the newsclip server
// ABOUTME: Tool failures are returned as error results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/harper/newsclip/internal/agent"
	"github.com/harper/newsclip/internal/core"
	"github.com/harper/newsclip/internal/session"
	"github.com/harper/newsclip/internal/storage/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// AnalysisLister reads the analysis log
type AnalysisLister interface {
	ListAnalyses(limit int) ([]sqlite.AnalysisRecord, error)
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	tools    *agent.Toolset
	pipeline *core.Pipeline
	sess     *session.Session
	history  AnalysisLister
	inflight sync.WaitGroup // tool calls still running
}

// StageTool returns the handler for the named stage tool
func (h *Handlers) StageTool(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		h.inflight.Add(1)
		defer h.inflight.Done()

		out, err := h.tools.Call(ctx, name, stringArgs(request.GetArguments()))
		if err != nil {
			slog.Warn("mcp tool failed", slog.String("tool", name), slog.Any("error", err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// AnalyzeVideo handles the analyze_video tool
func (h *Handlers) AnalyzeVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url argument is required and must be a string"), nil
	}
	if h.pipeline == nil {
		return mcp.NewToolResultError("pipeline is not configured"), nil
	}

	h.inflight.Add(1)
	defer h.inflight.Done()

	analysis, err := h.pipeline.Run(ctx, h.sess, url)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := map[string]interface{}{
		"id":         analysis.ID,
		"title":      analysis.Transcript.Title,
		"summary":    analysis.Summary.Text,
		"highlights": analysis.Highlights.Text,
		"keywords":   analysis.Highlights.Keywords,
		"steps":      len(analysis.Steps),
	}
	return jsonResult(response)
}

// GetSession handles the get_session tool
func (h *Handlers) GetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.sess.Snapshot())
}

// ListAnalyses handles the list_analyses tool
func (h *Handlers) ListAnalyses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	records, err := h.history.ListAnalyses(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list analyses: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"analyses": records,
		"count":    len(records),
	})
}

// Shutdown waits for running tool calls to finish
func (h *Handlers) Shutdown() {
	h.inflight.Wait()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// stringArgs flattens MCP arguments to strings; non-string values are JSON encoded
func stringArgs(raw map[string]any) map[string]string {
	args := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			args[k] = val
		default:
			b, err := json.Marshal(val)
			if err == nil {
				args[k] = string(b)
			}
		}
	}
	return args
}
