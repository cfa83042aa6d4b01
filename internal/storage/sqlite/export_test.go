// ABOUTME: Tests for export functionality
// ABOUTME: Verifies YAML and Markdown export of the analysis log
package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/newsclip/internal/models"
	"gopkg.in/yaml.v3"
)

func seedAnalysis(t *testing.T, s *Storage) {
	t.Helper()
	a := &models.Analysis{
		ID:         "analysis_export_1",
		URL:        "https://www.youtube.com/watch?v=abc",
		Transcript: models.Transcript{VideoID: "abc", Title: "Debate na Câmara"},
		Summary:    models.Summary{Text: "Deputados discutiram a reforma."},
		Highlights: models.Highlights{
			Text:     "# Pontos de Interesse Jornalístico\n\n## Destaque 1: Reforma\n**Trecho relevante:** ...",
			Keywords: "reforma, câmara",
		},
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
	}
	if err := s.SaveAnalysis(a); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}
}

func TestExport(t *testing.T) {
	s := newTestStorage(t)
	seedAnalysis(t, s)

	data, err := s.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if data.Version != "1.0" || data.Tool != "newsclip" {
		t.Errorf("header = %s/%s", data.Version, data.Tool)
	}
	if len(data.Analyses) != 1 || data.Analyses[0].Title != "Debate na Câmara" {
		t.Errorf("unexpected analyses: %+v", data.Analyses)
	}
}

func TestExportToYAML(t *testing.T) {
	s := newTestStorage(t)
	seedAnalysis(t, s)

	out := filepath.Join(t.TempDir(), "export", "analyses.yaml")
	if err := s.ExportToYAML(out); err != nil {
		t.Fatalf("ExportToYAML() error = %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var parsed ExportData
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("exported YAML does not parse: %v", err)
	}
	if len(parsed.Analyses) != 1 || parsed.Analyses[0].Keywords != "reforma, câmara" {
		t.Errorf("unexpected parsed export: %+v", parsed)
	}
}

func TestExportToMarkdown(t *testing.T) {
	s := newTestStorage(t)
	seedAnalysis(t, s)

	out := filepath.Join(t.TempDir(), "analyses.md")
	if err := s.ExportToMarkdown(out); err != nil {
		t.Fatalf("ExportToMarkdown() error = %v", err)
	}

	raw, _ := os.ReadFile(out)
	md := string(raw)
	for _, want := range []string{
		"## Debate na Câmara",
		"### Resumo",
		"### Pontos de Interesse Jornalístico",
		"#### Destaque 1: Reforma",
		"**Palavras-chave:** reforma, câmara",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
