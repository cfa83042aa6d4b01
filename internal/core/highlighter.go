// ABOUTME: Highlighter extracts keywords and asks the model for newsworthy excerpts
// ABOUTME: Output follows a fixed markdown template but is returned unvalidated
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/newsclip/internal/config"
	"github.com/harper/newsclip/internal/llm"
	"github.com/harper/newsclip/internal/models"
)

const (
	keywordSampleChars    = 2000
	keywordTemperature    = 0.1
	highlightTemperature  = 0.3
	newsQuerySuffix       = "notícias atuais Brasil"
	noSearchResultsNotice = "Nenhum resultado de busca disponível."
)

// Highlighter produces journalistic highlights
type Highlighter struct {
	llm      ChatClient
	prompts  config.Prompts
	maxChars int
}

// NewHighlighter creates a Highlighter; maxChars bounds the text sent in the prompt
func NewHighlighter(client ChatClient, prompts config.Prompts, maxChars int) *Highlighter {
	return &Highlighter{llm: client, prompts: prompts, maxChars: maxChars}
}

// Keywords returns 3-5 comma separated keywords for the start of text
func (h *Highlighter) Keywords(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	prompt := config.Render(h.prompts.Keywords, map[string]string{"text": head(text, keywordSampleChars)})
	out, err := h.llm.Complete(ctx, prompt, keywordTemperature)
	if err != nil {
		return "", fmt.Errorf("extract keywords: %w", err)
	}

	kw := strings.Join(strings.Fields(llm.StripReasoning(out)), " ")
	if kw == "" {
		return "", fmt.Errorf("extract keywords: %w", ErrEmptyText)
	}
	return kw, nil
}

// NewsQuery builds the web search query for keywords
func (h *Highlighter) NewsQuery(keywords string) string {
	return strings.TrimSpace(keywords) + " " + newsQuerySuffix
}

// Highlight asks for 3-5 highlights of text, cross-referenced with searchContext
func (h *Highlighter) Highlight(ctx context.Context, text, searchContext string) (models.Highlights, error) {
	if strings.TrimSpace(text) == "" {
		return models.Highlights{}, ErrEmptyText
	}
	if h.maxChars > 0 {
		text = Truncate(text, h.maxChars)
	}
	if strings.TrimSpace(searchContext) == "" {
		searchContext = noSearchResultsNotice
	}

	prompt := config.Render(h.prompts.Highlights, map[string]string{
		"context":        text,
		"search_results": searchContext,
	})
	out, err := h.llm.Complete(ctx, prompt, highlightTemperature)
	if err != nil {
		return models.Highlights{}, fmt.Errorf("generate highlights: %w", err)
	}
	return models.Highlights{Text: llm.StripReasoning(out)}, nil
}
