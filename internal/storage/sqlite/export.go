// ABOUTME: Export functionality for the analysis log
// ABOUTME: Supports YAML and Markdown export formats
package sqlite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version    string           `yaml:"version" json:"version"`
	ExportedAt string           `yaml:"exported_at" json:"exported_at"`
	Tool       string           `yaml:"tool" json:"tool"`
	Analyses   []ExportAnalysis `yaml:"analyses" json:"analyses"`
}

// ExportAnalysis represents one analysis for export
type ExportAnalysis struct {
	ID          string `yaml:"id" json:"id"`
	URL         string `yaml:"url" json:"url"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Keywords    string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	SearchQuery string `yaml:"search_query,omitempty" json:"search_query,omitempty"`
	Summary     string `yaml:"summary,omitempty" json:"summary,omitempty"`
	Highlights  string `yaml:"highlights,omitempty" json:"highlights,omitempty"`
	FinishedAt  string `yaml:"finished_at" json:"finished_at"`
}

// Export collects every recorded analysis, newest first
func (s *Storage) Export() (*ExportData, error) {
	records, err := s.analyses.List(0)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "newsclip",
		Analyses:   make([]ExportAnalysis, 0, len(records)),
	}
	for _, r := range records {
		data.Analyses = append(data.Analyses, ExportAnalysis{
			ID:          r.ID,
			URL:         r.URL,
			Title:       r.Title,
			Keywords:    r.Keywords,
			SearchQuery: r.SearchQuery,
			Summary:     r.Summary,
			Highlights:  r.Highlights,
			FinishedAt:  r.FinishedAt.Format(time.RFC3339),
		})
	}
	return data, nil
}

// ExportToYAML exports the analysis log to a YAML file
func (s *Storage) ExportToYAML(outputPath string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	return writeFile(outputPath, func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	})
}

// ExportToMarkdown exports the analysis log to a Markdown file
func (s *Storage) ExportToMarkdown(outputPath string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	return writeFile(outputPath, func(w io.Writer) error {
		_, _ = fmt.Fprintf(w, "# Análises newsclip - %s\n\n", time.Now().Format("2006-01-02"))
		_, _ = fmt.Fprintf(w, "Gerado em: %s\n\n", data.ExportedAt)

		for _, a := range data.Analyses {
			title := a.Title
			if title == "" {
				title = a.URL
			}
			_, _ = fmt.Fprintf(w, "## %s\n\n", title)
			_, _ = fmt.Fprintf(w, "- **URL:** %s\n", a.URL)
			_, _ = fmt.Fprintf(w, "- **Concluída:** %s\n", a.FinishedAt)
			if a.Keywords != "" {
				_, _ = fmt.Fprintf(w, "- **Palavras-chave:** %s\n", a.Keywords)
			}
			_, _ = fmt.Fprintln(w)
			if a.Summary != "" {
				_, _ = fmt.Fprintf(w, "### Resumo\n\n%s\n\n", strings.TrimSpace(a.Summary))
			}
			if a.Highlights != "" {
				// Demote the highlight headings so they nest under this analysis
				_, _ = fmt.Fprintf(w, "%s\n\n", demoteHeadings(strings.TrimSpace(a.Highlights), 2))
			}
			_, _ = fmt.Fprintln(w, "---")
			_, _ = fmt.Fprintln(w)
		}
		return nil
	})
}

func writeFile(outputPath string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return write(file)
}

func demoteHeadings(md string, levels int) string {
	prefix := strings.Repeat("#", levels)
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
