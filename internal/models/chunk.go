// ABOUTME: Chunk represents a bounded window of transcript text
// ABOUTME: Carries rune offsets so retrieved context can be traced back to the transcript
package models

// Chunk is a slice of a transcript produced by the chunk engine
type Chunk struct {
	ID      string `json:"id"`
	Index   int    `json:"index"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Content string `json:"content"`
}

// Len returns the chunk length in runes
func (c Chunk) Len() int {
	return c.End - c.Start
}

// ScoredChunk is a chunk returned by a similarity search
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}
