// ABOUTME: MCP tool definitions and registration for the newsclip server
// ABOUTME: Exposes the agent toolset plus pipeline, session and history tools
package mcp

import (
	"github.com/harper/newsclip/internal/agent"
	"github.com/harper/newsclip/internal/core"
	"github.com/harper/newsclip/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server. history may be nil,
// in which case list_analyses is not offered.
func RegisterTools(server *mcpserver.MCPServer, tools *agent.Toolset, pipeline *core.Pipeline, sess *session.Session, history AnalysisLister) *Handlers {
	handlers := &Handlers{
		tools:    tools,
		pipeline: pipeline,
		sess:     sess,
		history:  history,
	}

	// Stage tools share their declarations with the agent loop
	for _, t := range tools.Tools() {
		if t.Name == agent.ToolFinalAnswer {
			continue
		}
		props, required := t.Schema()
		server.AddTool(mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: props,
				Required:   required,
			},
		}, handlers.StageTool(t.Name))
	}

	// analyze_video - run the whole pipeline and commit the result
	server.AddTool(mcp.Tool{
		Name:        "analyze_video",
		Description: "Run the full pipeline on a YouTube video: transcription, summary, index, news search and journalistic highlights. Results replace the current session only when every stage succeeds.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "YouTube video URL",
				},
			},
			Required: []string{"url"},
		},
	}, handlers.AnalyzeVideo)

	// get_session - current artifacts and conversation history
	server.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the current transcript, summary, highlights, index status and conversation history.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetSession)

	if history != nil {
		// list_analyses - previously completed analyses
		server.AddTool(mcp.Tool{
			Name:        "list_analyses",
			Description: "List previously completed video analyses, most recent first.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum number of analyses to return (default: 10)",
						"default":     10,
					},
				},
			},
		}, handlers.ListAnalyses)
	}

	return handlers
}
