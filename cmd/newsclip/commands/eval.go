// ABOUTME: CLI command running the RAGAS question-answering benchmarks
// ABOUTME: Scores faithfulness and context recall of the transcript Q&A against the live models
package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/newsclip/benchmarks/ragas"
)

var (
	evalScenario string
	evalOutput   string
)

// NewEvalCmd creates eval command
func NewEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run RAGAS benchmarks on transcript Q&A",
		Long: `Index a set of known transcripts, ask each its question and score the
answers for faithfulness and context recall.

Uses the configured chat and embedding models, so results reflect the
current LLM_MODEL, EMBEDDING_MODEL and RAG_TOP_K settings. Exits with an error if
any scenario fails.`,
		Example: `  newsclip eval
  newsclip eval --scenario orcamento -v
  newsclip eval --output results.json`,
		Args: cobra.NoArgs,
		RunE: runEval,
	}

	cmd.Flags().StringVar(&evalScenario, "scenario", "", "Run one scenario by ID ("+strings.Join(scenarioIDs(), ", ")+")")
	cmd.Flags().StringVarP(&evalOutput, "output", "o", "benchmark_results.json", "Output path for JSON results")

	return cmd
}

func scenarioIDs() []string {
	var ids []string
	for _, s := range ragas.AllScenarios() {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids
}

func runEval(cmd *cobra.Command, args []string) error {
	scenarios := ragas.AllScenarios()
	if evalScenario != "" {
		s, ok := ragas.ScenarioByID(evalScenario)
		if !ok {
			return fmt.Errorf("unknown scenario %q (valid: %s)", evalScenario, strings.Join(scenarioIDs(), ", "))
		}
		scenarios = []ragas.Scenario{s}
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	runner := ragas.NewBenchmarkRunner(a.stages.Indexer, a.stages.Querier, cmd.ErrOrStderr(), verbose)
	results := runner.RunAllTests(cmd.Context(), scenarios)

	printEvalResults(cmd, results)

	if err := ragas.ExportResults(results, evalOutput); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(out, "\nResults written to %s\n", evalOutput)
	}

	if _, failed := ragas.Summary(results); failed > 0 {
		return fmt.Errorf("%d of %d scenario(s) failed", failed, len(results))
	}
	return nil
}

func printEvalResults(cmd *cobra.Command, results []ragas.Result) {
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "\n%s: %s\n", r.ScenarioID, r.Name)
		if r.ErrorMessage != "" {
			fmt.Fprintf(out, "  Error: %s\n", r.ErrorMessage)
		} else {
			fmt.Fprintf(out, "  Faithfulness: %.2f\n", r.FaithfulnessScore)
			fmt.Fprintf(out, "  Context Recall: %.2f\n", r.ContextRecallScore)
			fmt.Fprintf(out, "  Overall: %.2f\n", r.OverallScore)
		}
		fmt.Fprintf(out, "  Status: %s\n", r.Status)
	}

	passed, failed := ragas.Summary(results)
	fmt.Fprintf(out, "\nTotal: %d  Passed: %d  Failed: %d\n", len(results), passed, failed)
}
