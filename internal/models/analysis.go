// ABOUTME: Derived artifacts of one pipeline run: summary, highlights, answers, steps
// ABOUTME: Analysis groups everything a successful run commits to the session
package models

import (
	"strings"
	"time"
)

// AnswerLabel prefixes every retrieval-augmented answer
const AnswerLabel = "Resposta baseada na transcrição do vídeo:"

// Summary is the condensed form of a transcript
type Summary struct {
	Text string `json:"text"`
	// Chunks is the number of windows summarized; 0 means the transcript was short
	// enough to be used verbatim.
	Chunks int `json:"chunks"`
}

// Highlights is the model's markdown list of newsworthy excerpts
type Highlights struct {
	Text        string `json:"text"`
	Keywords    string `json:"keywords,omitempty"`
	SearchQuery string `json:"search_query,omitempty"`
}

// Count returns how many "## Destaque" headings the model produced
func (h Highlights) Count() int {
	n := 0
	for _, line := range strings.Split(h.Text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "## Destaque") {
			n++
		}
	}
	return n
}

// Answer is the response to a question about the indexed transcript
type Answer struct {
	Question string        `json:"question"`
	Text     string        `json:"text"`
	Sources  []ScoredChunk `json:"sources,omitempty"`
	NoIndex  bool          `json:"no_index,omitempty"`
}

// Render formats the answer with its fixed label
func (a Answer) Render() string {
	if a.NoIndex {
		return a.Text
	}
	return AnswerLabel + "\n\n" + a.Text
}

// SearchResult is one web search hit
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Step records one completed pipeline stage
type Step struct {
	Name     string        `json:"name"`
	Content  string        `json:"content"`
	Duration time.Duration `json:"duration"`
}

// Analysis is the full result of processing one video
type Analysis struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Transcript Transcript `json:"transcript"`
	Summary    Summary    `json:"summary"`
	Highlights Highlights `json:"highlights"`
	Steps      []Step     `json:"steps"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}
