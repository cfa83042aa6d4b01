// ABOUTME: Serve command runs the HTTP JSON API and artifact downloads
// ABOUTME: Shuts down gracefully on SIGINT/SIGTERM
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/newsclip/internal/server"
)

var (
	serveAddr string
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API over one shared session.

Routes:
  POST /api/analyze   {"url": "..."}       run the full pipeline
  POST /api/ask       {"question": "..."}  ask about the indexed transcript
  POST /api/search    {"query": "..."}     web search
  GET  /api/session                        current artifacts and history
  GET  /api/history                        past analyses
  GET  /download/transcript.txt|summary.txt|highlights.md
  GET  /healthz`,
		Example: `  newsclip serve
  newsclip serve --addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	handlers := server.NewHandlers(a.pipeline(), a.stages.Querier, a.searcher, a.sess, a.store)
	srv := server.New(serveAddr, handlers)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("newsclip HTTP server listening", slog.String("addr", serveAddr))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
