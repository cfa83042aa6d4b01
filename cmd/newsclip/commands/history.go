// ABOUTME: History commands for the local analysis log
// ABOUTME: Lists, shows, exports (YAML or Markdown) and counts past analyses
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/newsclip/internal/storage/sqlite"
)

var (
	historyLimit int
)

// NewHistoryCmd creates the history command group
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past analyses",
		Long: `Browse the local log of completed analyses.

Every successful "analyze" run (from the CLI, chat, MCP or HTTP) is
recorded in the newsclip database under NEWSCLIP_DATA_DIR, together
with cached transcripts.`,
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryExportCmd())
	cmd.AddCommand(newHistoryStatsCmd())

	return cmd
}

// openStore opens the local database without touching the LLM
func openStore() (*sqlite.Storage, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := sqlite.NewStorage(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(historyLimit, "limit"); err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListAnalyses(historyLimit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum analyses to show")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <analysis-id>",
		Short: "Show the summary and highlights of one analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			r, err := store.GetAnalysis(args[0])
			if err != nil {
				return err
			}
			if r == nil {
				return fmt.Errorf("analysis %s not found", args[0])
			}
			return printRecord(cmd.OutOrStdout(), r)
		},
	}
}

func newHistoryExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.yaml|file.md>",
		Short: "Export every analysis to YAML or Markdown",
		Long: `Export the whole analysis log. The format follows the file
extension: .yaml/.yml for YAML, .md for Markdown.`,
		Example: `  newsclip history export analyses.yaml
  newsclip history export pautas.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := exportHistory(store, args[0]); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
			}
			return nil
		},
	}
}

func newHistoryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached transcript and analysis counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transcripts, analyses, err := store.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transcripts cached: %d\n", transcripts)
			fmt.Fprintf(cmd.OutOrStdout(), "Analyses recorded:  %d\n", analyses)
			return nil
		},
	}
}

// exportHistory picks the export format from the file extension
func exportHistory(store *sqlite.Storage, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return store.ExportToYAML(path)
	case ".md", ".markdown":
		return store.ExportToMarkdown(path)
	default:
		return fmt.Errorf("unsupported export format %q (use .yaml or .md)", filepath.Ext(path))
	}
}

func printHistory(w io.Writer, records []sqlite.AnalysisRecord) error {
	if len(records) == 0 {
		if !quiet {
			fmt.Fprintf(w, "No analyses yet\n")
		}
		return nil
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(w, "%s\n", data)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tTITLE\tVIDEO\tFINISHED\n")
	fmt.Fprintf(tw, "--\t-----\t-----\t--------\n")
	for _, r := range records {
		title := r.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, truncate(title, 40), r.VideoID, formatTime(r.FinishedAt))
	}
	_ = tw.Flush()

	if !quiet {
		fmt.Fprintf(w, "\nTotal: %d analysis(es)\n", len(records))
	}
	return nil
}

func printRecord(w io.Writer, r *sqlite.AnalysisRecord) error {
	if outputFormat == "json" {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(w, "%s\n", data)
		return nil
	}

	title := r.Title
	if title == "" {
		title = r.URL
	}
	fmt.Fprintf(w, "# %s\n\n", title)
	fmt.Fprintf(w, "%s · %s\n\n", r.URL, r.FinishedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "## Resumo\n\n%s\n\n", r.Summary)
	if r.Keywords != "" {
		fmt.Fprintf(w, "**Palavras-chave:** %s\n\n", r.Keywords)
	}
	fmt.Fprintf(w, "## Destaques jornalísticos\n\n%s\n", r.Highlights)
	return nil
}
