// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes the pipeline stages as tools to LLM agents via stdio
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/newsclip/internal/agent"
	"github.com/harper/newsclip/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs newsclip as an MCP (Model Context Protocol) server, so LLM agents
like Claude can transcribe, summarize, search and find highlights in
YouTube videos via stdio. The tools share one session per process.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  newsclip mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "newsclip": {
  #       "command": "newsclip",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcpserver.NewMCPServer(
		"newsclip",
		versionInfo.Version,
		mcpserver.WithToolCapabilities(false),
	)

	handlers := mcp.RegisterTools(server, agent.StageTools(a.stages, a.sess), a.pipeline(), a.sess, a.store)

	slog.Info("newsclip MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, waiting for running tools")
		handlers.Shutdown()
		slog.Info("shutdown complete")

	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
