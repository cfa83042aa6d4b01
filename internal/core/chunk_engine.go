// ABOUTME: ChunkEngine splits transcripts into windows for summarization and retrieval
// ABOUTME: Fixed windows reproduce the input exactly; overlapping windows prefer word boundaries
package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/harper/newsclip/internal/models"
)

// ErrEmptyText is returned when a stage receives blank input
var ErrEmptyText = errors.New("text is empty")

// ChunkEngine handles transcript chunking
type ChunkEngine struct{}

// NewChunkEngine creates a new ChunkEngine instance
func NewChunkEngine() *ChunkEngine {
	return &ChunkEngine{}
}

// Windows splits text into consecutive windows of at most maxChars runes.
// Joining the result with "" yields text unchanged; only the last window may be shorter.
func (ce *ChunkEngine) Windows(text string, maxChars int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return []string{text}
	}

	windows := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for start := 0; start < len(runes); start += maxChars {
		end := min(start+maxChars, len(runes))
		windows = append(windows, string(runes[start:end]))
	}
	return windows
}

// Overlapping splits text into chunks of at most size runes, each starting
// roughly overlap runes before the previous one ended. Chunk ends are pulled
// back to whitespace when one exists in the second half of the window.
func (ce *ChunkEngine) Overlapping(text string, size, overlap int) ([]models.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}

	runes := []rune(text)
	n := len(runes)
	var chunks []models.Chunk

	for start := 0; start < n; {
		end := min(start+size, n)
		if end < n {
			for i := end - 1; i > start+size/2; i-- {
				if unicode.IsSpace(runes[i]) {
					end = i + 1
					break
				}
			}
		}

		if content := strings.TrimSpace(string(runes[start:end])); content != "" {
			chunks = append(chunks, models.Chunk{
				ID:      generateChunkID(),
				Index:   len(chunks),
				Start:   start,
				End:     end,
				Content: content,
			})
		}
		if end >= n {
			break
		}

		next := end - overlap
		// Start the next window on a word when the overlap contains one
		for j := max(next, 1); j < end; j++ {
			if unicode.IsSpace(runes[j-1]) {
				next = j
				break
			}
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// Truncate shortens text to at most maxChars runes, cutting at the last
// whitespace before the limit when there is one
func Truncate(text string, maxChars int) string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return text
	}
	cut := maxChars
	for i := maxChars; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
}

// head returns the first n runes of text
func head(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// generateChunkID generates a unique chunk ID
func generateChunkID() string {
	return "chunk_" + uuid.New().String()
}
