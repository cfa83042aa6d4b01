// ABOUTME: Summarizer condenses transcripts, window by window when they are long
// ABOUTME: Also provides the single-shot structured summary used by the agent
package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/harper/newsclip/internal/config"
	"github.com/harper/newsclip/internal/llm"
	"github.com/harper/newsclip/internal/models"
)

const (
	summaryTemperature    = 0.3
	structuredTemperature = 0.2
)

// SummarizerConfig sets the window policy
type SummarizerConfig struct {
	// Threshold is the length in characters above which text is summarized per window
	Threshold int
	// ChunkChars is the window size
	ChunkChars int
	// PromptMaxChars bounds the structured summary input
	PromptMaxChars int
}

// Summarizer produces summaries through a chat model
type Summarizer struct {
	llm     ChatClient
	engine  *ChunkEngine
	prompts config.Prompts
	cfg     SummarizerConfig
}

// NewSummarizer creates a Summarizer
func NewSummarizer(client ChatClient, prompts config.Prompts, cfg SummarizerConfig) *Summarizer {
	if cfg.ChunkChars <= 0 {
		cfg.ChunkChars = 3000
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = cfg.ChunkChars
	}
	return &Summarizer{llm: client, engine: NewChunkEngine(), prompts: prompts, cfg: cfg}
}

// Threshold returns the length above which the pipeline summarizes
func (s *Summarizer) Threshold() int {
	return s.cfg.Threshold
}

// Summarize returns a summary of text. Texts longer than the threshold are
// split into fixed windows, summarized in order, and joined with blank lines.
func (s *Summarizer) Summarize(ctx context.Context, text string) (models.Summary, error) {
	if strings.TrimSpace(text) == "" {
		return models.Summary{}, ErrEmptyText
	}

	windows := []string{text}
	if utf8.RuneCountInString(text) > s.cfg.Threshold {
		windows = s.engine.Windows(text, s.cfg.ChunkChars)
	}

	parts := make([]string, 0, len(windows))
	for i, w := range windows {
		out, err := s.llm.Complete(ctx, config.Render(s.prompts.Summarize, map[string]string{"transcript": w}), summaryTemperature)
		if err != nil {
			return models.Summary{}, fmt.Errorf("summarize window %d/%d: %w", i+1, len(windows), err)
		}
		parts = append(parts, llm.StripReasoning(out))
	}

	slog.Debug("summarized text", slog.Int("windows", len(windows)))
	return models.Summary{Text: strings.Join(parts, "\n\n"), Chunks: len(windows)}, nil
}

// SummarizeStructured asks for a single ~500 word structured summary
func (s *Summarizer) SummarizeStructured(ctx context.Context, transcript string) (models.Summary, error) {
	if strings.TrimSpace(transcript) == "" {
		return models.Summary{}, ErrEmptyText
	}

	input := transcript
	if s.cfg.PromptMaxChars > 0 {
		input = Truncate(transcript, s.cfg.PromptMaxChars)
	}

	out, err := s.llm.Complete(ctx, config.Render(s.prompts.SummarizeStructured, map[string]string{"transcript": input}), structuredTemperature)
	if err != nil {
		return models.Summary{}, fmt.Errorf("structured summary: %w", err)
	}
	return models.Summary{Text: llm.StripReasoning(out), Chunks: 1}, nil
}
