// ABOUTME: RAGAS metrics implementation for faithfulness and context recall
// ABOUTME: Deterministic evaluation by comparing answers and retrieved chunks to ground truth

package ragas

import (
	"fmt"
	"strings"

	"github.com/harper/newsclip/internal/models"
)

// passThreshold is the minimum score on both metrics for a PASS
const passThreshold = 0.9

// Result is the outcome of one scenario
type Result struct {
	ScenarioID         string         `json:"scenario_id"`
	Name               string         `json:"name"`
	FaithfulnessScore  float64        `json:"faithfulness"`
	ContextRecallScore float64        `json:"context_recall"`
	OverallScore       float64        `json:"overall"`
	Status             string         `json:"status"` // "PASS" or "FAIL"
	Details            map[string]any `json:"details,omitempty"`
	ErrorMessage       string         `json:"error,omitempty"`
}

// Passed reports whether the scenario passed
func (r Result) Passed() bool {
	return r.Status == "PASS"
}

// MetricsCalculator computes RAGAS scores
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateFaithfulness scores (0.0-1.0) whether the answer contains what it
// must and nothing it must not
func (m *MetricsCalculator) CalculateFaithfulness(answer string, expected, forbidden []string) (float64, string) {
	upper := strings.ToUpper(answer)

	var missing, found []string
	for _, e := range expected {
		if !strings.Contains(upper, strings.ToUpper(e)) {
			missing = append(missing, e)
		}
	}
	for _, f := range forbidden {
		if strings.Contains(upper, strings.ToUpper(f)) {
			found = append(found, f)
		}
	}

	switch {
	case len(missing) == 0 && len(found) == 0:
		return 1.0, "answer matches ground truth"
	case len(missing) > 0 && len(found) > 0:
		return 0.0, fmt.Sprintf("missing expected items: %v, forbidden items found: %v", missing, found)
	case len(missing) > 0:
		return 0.5, fmt.Sprintf("missing expected items: %v", missing)
	default:
		return 0.5, fmt.Sprintf("forbidden items found: %v", found)
	}
}

// CalculateContextRecall scores (0.0-1.0) the share of expected items present
// in the retrieved chunks
func (m *MetricsCalculator) CalculateContextRecall(retrieved, expected []string) (float64, string) {
	if len(expected) == 0 {
		return 1.0, "no context retrieval required"
	}

	all := strings.ToUpper(strings.Join(retrieved, " "))

	var missing []string
	for _, e := range expected {
		if !strings.Contains(all, strings.ToUpper(e)) {
			missing = append(missing, e)
		}
	}

	recall := float64(len(expected)-len(missing)) / float64(len(expected))
	if len(missing) == 0 {
		return recall, "all expected items retrieved"
	}
	return recall, fmt.Sprintf("partial context recall (%.2f), missing items: %v", recall, missing)
}

// Evaluate scores an answer against a scenario's ground truth
func (m *MetricsCalculator) Evaluate(s Scenario, answer models.Answer) Result {
	retrieved := make([]string, len(answer.Sources))
	for i, src := range answer.Sources {
		retrieved[i] = src.Content
	}

	faithfulness, faithfulnessDetail := m.CalculateFaithfulness(
		answer.Text,
		s.GroundTruth.ExpectedInAnswer,
		s.GroundTruth.ForbiddenInAnswer,
	)
	recall, recallDetail := m.CalculateContextRecall(retrieved, s.GroundTruth.ExpectedContext)

	status := "FAIL"
	if faithfulness >= passThreshold && recall >= passThreshold {
		status = "PASS"
	}

	return Result{
		ScenarioID:         s.ID,
		Name:               s.Name,
		FaithfulnessScore:  faithfulness,
		ContextRecallScore: recall,
		OverallScore:       (faithfulness + recall) / 2.0,
		Status:             status,
		Details: map[string]any{
			"faithfulness_detail": faithfulnessDetail,
			"recall_detail":       recallDetail,
			"answer":              preview(answer.Text, 200),
			"context_items":       len(retrieved),
		},
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
