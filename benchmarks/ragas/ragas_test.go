// ABOUTME: Tests for RAGAS metrics, scenarios and the benchmark runner
// ABOUTME: The runner is exercised with a constant embedder and a scripted chat model

package ragas

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/newsclip/internal/config"
	"github.com/harper/newsclip/internal/core"
	"github.com/harper/newsclip/internal/llm"
	"github.com/harper/newsclip/internal/models"
)

func TestCalculateFaithfulness(t *testing.T) {
	m := NewMetricsCalculator()

	tests := []struct {
		name      string
		answer    string
		expected  []string
		forbidden []string
		want      float64
	}{
		{"all expected, none forbidden", "O orçamento é de 2,3 bilhões.", []string{"2,3 bilhões"}, []string{"milhões"}, 1.0},
		{"case insensitive", "MARINA DUARTE disse isso", []string{"Marina Duarte"}, nil, 1.0},
		{"missing expected", "Não sei.", []string{"2,3 bilhões"}, nil, 0.5},
		{"forbidden found", "2,3 bilhões ou 500 milhões", []string{"2,3 bilhões"}, []string{"milhões"}, 0.5},
		{"both failures", "500 milhões", []string{"2,3 bilhões"}, []string{"milhões"}, 0.0},
		{"no ground truth", "qualquer coisa", nil, nil, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, detail := m.CalculateFaithfulness(tt.answer, tt.expected, tt.forbidden)
			if got != tt.want {
				t.Errorf("score = %.2f, want %.2f (%s)", got, tt.want, detail)
			}
		})
	}
}

func TestCalculateContextRecall(t *testing.T) {
	m := NewMetricsCalculator()

	tests := []struct {
		name      string
		retrieved []string
		expected  []string
		want      float64
	}{
		{"nothing expected", nil, nil, 1.0},
		{"all retrieved", []string{"votação em 14 de novembro", "plano diretor"}, []string{"14 de novembro", "plano diretor"}, 1.0},
		{"half retrieved", []string{"plano diretor"}, []string{"14 de novembro", "plano diretor"}, 0.5},
		{"none retrieved", []string{"ata da reunião"}, []string{"14 de novembro"}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, detail := m.CalculateContextRecall(tt.retrieved, tt.expected)
			if got != tt.want {
				t.Errorf("recall = %.2f, want %.2f (%s)", got, tt.want, detail)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	m := NewMetricsCalculator()
	s := BudgetFigure()

	answer := models.Answer{
		Text:    "O orçamento da saúde será de 2,3 bilhões de reais.",
		Sources: []models.ScoredChunk{{Chunk: models.Chunk{Content: "orçamento da saúde ... 2,3 bilhões de reais"}}},
	}
	result := m.Evaluate(s, answer)
	if !result.Passed() || result.OverallScore != 1.0 {
		t.Errorf("result = %+v, want PASS with 1.0", result)
	}

	answer.Sources = nil
	result = m.Evaluate(s, answer)
	if result.Passed() || result.ContextRecallScore != 0 {
		t.Errorf("result = %+v, want FAIL on recall", result)
	}
}

func TestScenarios(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range AllScenarios() {
		if seen[s.ID] {
			t.Errorf("duplicate scenario ID %s", s.ID)
		}
		seen[s.ID] = true

		if strings.TrimSpace(s.Question) == "" || strings.TrimSpace(s.Transcript) == "" {
			t.Errorf("%s: question and transcript are required", s.ID)
		}
		for _, item := range s.GroundTruth.ExpectedContext {
			if !strings.Contains(s.Transcript, item) {
				t.Errorf("%s: expected context %q is not in the transcript", s.ID, item)
			}
		}

		got, ok := ScenarioByID(s.ID)
		if !ok || got.Name != s.Name {
			t.Errorf("ScenarioByID(%s) = %+v, %v", s.ID, got, ok)
		}
	}

	if _, ok := ScenarioByID("nope"); ok {
		t.Error("unknown ID should not be found")
	}
	if !strings.HasSuffix(strings.TrimSpace(LateFact().Transcript), "14 de novembro.") {
		t.Error("the late fact should close the transcript")
	}
}

type constEmbedder struct {
	err error
}

func (e constEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type cannedChat struct {
	answer string
}

func (c cannedChat) Chat(ctx context.Context, messages []llm.Message, temperature float32) (string, error) {
	return c.answer, nil
}

func (c cannedChat) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	return c.answer, nil
}

func newRunner(answer string, embedErr error) *BenchmarkRunner {
	emb := constEmbedder{err: embedErr}
	indexer := core.NewIndexer(emb, 500, 50)
	querier := core.NewQuerier(cannedChat{answer: answer}, emb, config.DefaultPrompts(), 3)
	return NewBenchmarkRunner(indexer, querier, nil, false)
}

func shortScenario() Scenario {
	return Scenario{
		ID:         "curto",
		Name:       "Curto",
		Transcript: "O secretário anunciou um orçamento de 2,3 bilhões de reais para a saúde.",
		Question:   "Qual o orçamento?",
		GroundTruth: GroundTruth{
			ExpectedInAnswer:  []string{"2,3 bilhões"},
			ForbiddenInAnswer: []string{"milhões"},
			ExpectedContext:   []string{"2,3 bilhões"},
		},
	}
}

func TestRunTest(t *testing.T) {
	ctx := context.Background()

	result, err := newRunner("O orçamento é de 2,3 bilhões de reais.", nil).RunTest(ctx, shortScenario())
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}
	if !result.Passed() {
		t.Errorf("result = %+v, want PASS", result)
	}

	result, err = newRunner("Foram 500 milhões.", nil).RunTest(ctx, shortScenario())
	if err != nil {
		t.Fatal(err)
	}
	if result.Passed() || result.FaithfulnessScore != 0 {
		t.Errorf("result = %+v, want FAIL with faithfulness 0", result)
	}
}

func TestRunAllTests_RecordsErrors(t *testing.T) {
	runner := newRunner("qualquer", errors.New("embedding endpoint down"))

	results := runner.RunAllTests(context.Background(), []Scenario{shortScenario(), BudgetFigure()})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Passed() || !strings.Contains(r.ErrorMessage, "embedding endpoint down") {
			t.Errorf("result = %+v, want FAIL carrying the error", r)
		}
	}

	passed, failed := Summary(results)
	if passed != 0 || failed != 2 {
		t.Errorf("Summary() = %d, %d", passed, failed)
	}
}

func TestRunAllTests_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newRunner("x", nil).RunAllTests(ctx, AllScenarios())
	if len(results) != 0 {
		t.Errorf("cancelled run produced %d results", len(results))
	}
}

func TestExportResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	results := []Result{
		{ScenarioID: "a", Status: "PASS"},
		{ScenarioID: "b", Status: "FAIL"},
	}

	if err := ExportResults(results, path); err != nil {
		t.Fatalf("ExportResults() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var summary struct {
		Total   int      `json:"total_tests"`
		Passed  int      `json:"passed"`
		Failed  int      `json:"failed"`
		Results []Result `json:"results"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Total != 2 || summary.Passed != 1 || summary.Failed != 1 || len(summary.Results) != 2 {
		t.Errorf("summary = %+v", summary)
	}
}
