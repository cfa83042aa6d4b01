// ABOUTME: CLI command that runs the full pipeline on one video
// ABOUTME: Prints summary and highlights and optionally writes the artifact files
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/newsclip/internal/models"
)

var (
	analyzeOut string
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <youtube-url>",
		Short: "Transcribe, summarize and find highlights in a video",
		Long: `Run the whole pipeline on a YouTube video.

Steps: download the audio, transcribe it, summarize long transcripts
window by window, index the transcript, extract keywords, search current
news and ask the model for journalistic highlights.

Nothing is kept if any step fails. Use --out to write the transcript,
summary and highlights files to a directory.`,
		Example: `  newsclip analyze https://youtu.be/dQw4w9WgXcQ
  newsclip analyze --out ./pauta https://www.youtube.com/watch?v=dQw4w9WgXcQ
  newsclip analyze --format json https://youtu.be/dQw4w9WgXcQ`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Directory to write the artifact files to")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pipeline := a.pipeline()
	if !quiet {
		pipeline.OnStep = func(s models.Step) {
			printStep(cmd.ErrOrStderr(), s)
		}
	}

	analysis, err := pipeline.Run(ctx, a.sess, args[0])
	if err != nil {
		if ctx.Err() == context.Canceled {
			return fmt.Errorf("analysis cancelled")
		}
		return err
	}

	if analyzeOut != "" {
		paths, err := a.sess.Export(analyzeOut)
		if err != nil {
			return fmt.Errorf("exporting artifacts: %w", err)
		}
		if !quiet {
			for _, p := range paths {
				fmt.Fprintf(cmd.ErrOrStderr(), "📄 %s\n", p)
			}
		}
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	printAnalysis(cmd.OutOrStdout(), analysis)
	return nil
}

func printStep(w io.Writer, s models.Step) {
	fmt.Fprintf(w, "✅ %-10s %s\n", s.Name, s.Duration.Round(100*time.Millisecond))
}

func printAnalysis(w io.Writer, a *models.Analysis) {
	title := a.Transcript.Title
	if title == "" {
		title = a.URL
	}
	fmt.Fprintf(w, "# %s\n\n", title)

	fmt.Fprintf(w, "## Resumo\n\n%s\n\n", a.Summary.Text)
	if a.Highlights.Keywords != "" {
		fmt.Fprintf(w, "**Palavras-chave:** %s\n\n", a.Highlights.Keywords)
	}
	fmt.Fprintf(w, "## Destaques jornalísticos\n\n%s\n", a.Highlights.Text)
}
