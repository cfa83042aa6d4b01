// ABOUTME: Search result set and its text rendering for prompts and tool output
// ABOUTME: An empty result set renders a fixed "no results" sentence, never an empty string
package search

import (
	"fmt"
	"strings"

	"github.com/harper/newsclip/internal/models"
)

// Results is the outcome of one web search
type Results struct {
	Query string                `json:"query"`
	Items []models.SearchResult `json:"items"`
	// Cached is set when the results came from the cache
	Cached bool `json:"cached,omitempty"`
}

// Empty reports whether the search found nothing
func (r Results) Empty() bool {
	return len(r.Items) == 0
}

// Format renders the results as markdown-ish text
func (r Results) Format() string {
	if r.Empty() {
		return fmt.Sprintf("Nenhum resultado encontrado para a busca: '%s'", r.Query)
	}

	var b strings.Builder
	b.WriteString("Resultados da busca:\n\n")
	for i, item := range r.Items {
		fmt.Fprintf(&b, "### Resultado %d: %s\n", i+1, item.Title)
		fmt.Fprintf(&b, "%s\n", item.Snippet)
		fmt.Fprintf(&b, "**Fonte:** %s\n\n", item.URL)
	}
	return b.String()
}
