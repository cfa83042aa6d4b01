// ABOUTME: CLI command for a standalone web search
// ABOUTME: Uses the same rate-limited, cached search client as the pipeline
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the web for news",
		Long: `Search the web with the pipeline's news search.

Results are cached (in memory, and in Redis when REDIS_URL is set), so
repeating a query within SEARCH_CACHE_TTL does not hit the network.`,
		Example: `  newsclip search "reforma tributária"
  newsclip search --limit 10 "eleições municipais"
  newsclip search --format json "inflação"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	searcher, cache := newSearcher(cmd.Context(), cfg)
	defer func() { _ = cache.Close() }()

	query := strings.Join(args, " ")
	results, err := searcher.Search(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if results.Empty() {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", results.Format())
		}
		return nil
	}

	switch outputFormat {
	case "json":
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	default:
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "#\tTITLE\tURL\tSNIPPET\n")
		fmt.Fprintf(w, "-\t-----\t---\t-------\n")
		for i, item := range results.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				i+1,
				truncate(item.Title, 40),
				truncate(item.URL, 50),
				truncate(oneLine(item.Snippet), 60))
		}
		_ = w.Flush()

		if !quiet {
			cached := ""
			if results.Cached {
				cached = " (cached)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)%s\n", len(results.Items), cached)
		}
	}

	return nil
}
