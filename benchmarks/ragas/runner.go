// ABOUTME: Test runner for RAGAS benchmarks - indexes each transcript and asks its question
// ABOUTME: Uses the same indexer and querier as the pipeline so scores reflect production behavior

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harper/newsclip/internal/core"
)

// BenchmarkRunner executes RAGAS benchmark scenarios
type BenchmarkRunner struct {
	indexer *core.Indexer
	querier *core.Querier
	metrics *MetricsCalculator
	out     io.Writer
	verbose bool
}

// NewBenchmarkRunner creates a runner. Progress goes to out when verbose.
func NewBenchmarkRunner(indexer *core.Indexer, querier *core.Querier, out io.Writer, verbose bool) *BenchmarkRunner {
	if out == nil {
		out = io.Discard
	}
	return &BenchmarkRunner{
		indexer: indexer,
		querier: querier,
		metrics: NewMetricsCalculator(),
		out:     out,
		verbose: verbose,
	}
}

// RunTest executes a single scenario. Indexing or model failures are
// returned as errors, not as failed results.
func (r *BenchmarkRunner) RunTest(ctx context.Context, s Scenario) (Result, error) {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", s.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Question: %s\n", s.Question)
	}

	idx, err := r.indexer.Index(ctx, s.Transcript)
	if err != nil {
		return Result{}, fmt.Errorf("index %s: %w", s.ID, err)
	}

	answer, err := r.querier.Ask(ctx, idx, s.Question)
	if err != nil {
		return Result{}, fmt.Errorf("ask %s: %w", s.ID, err)
	}

	result := r.metrics.Evaluate(s, answer)

	if r.verbose {
		fmt.Fprintf(r.out, "Chunks indexed: %d, retrieved: %d\n", idx.Len(), len(answer.Sources))
		fmt.Fprintf(r.out, "Answer: %s\n", preview(answer.Text, 150))
		fmt.Fprintf(r.out, "Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Fprintf(r.out, "Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Fprintf(r.out, "Status: %s\n", result.Status)
	}

	return result, nil
}

// RunAllTests executes every scenario. A scenario that errors is recorded as
// a FAIL with its error message and the run continues.
func (r *BenchmarkRunner) RunAllTests(ctx context.Context, scenarios []Scenario) []Result {
	results := make([]Result, 0, len(scenarios))

	for _, s := range scenarios {
		if ctx.Err() != nil {
			break
		}
		result, err := r.RunTest(ctx, s)
		if err != nil {
			result = Result{ScenarioID: s.ID, Name: s.Name, Status: "FAIL", ErrorMessage: err.Error()}
		}
		results = append(results, result)
	}

	return results
}

// Summary counts passed and failed results
func Summary(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// ExportResults writes results with a pass/fail summary as JSON
func ExportResults(results []Result, outputPath string) error {
	passed, failed := Summary(results)
	summary := map[string]any{
		"timestamp":   time.Now().Format(time.RFC3339),
		"total_tests": len(results),
		"passed":      passed,
		"failed":      failed,
		"results":     results,
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
