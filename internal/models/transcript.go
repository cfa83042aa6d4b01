// ABOUTME: Transcript is the recognized text of a video's audio track
// ABOUTME: Immutable once produced; consumed by summary, index and highlight stages
package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Transcript holds the speech-to-text output for one video
type Transcript struct {
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	Cached    bool      `json:"cached,omitempty"`
}

// Len returns the transcript length in characters
func (t Transcript) Len() int {
	return utf8.RuneCountInString(t.Text)
}

// Render formats the transcript the way it is shown and downloaded
func (t Transcript) Render() string {
	return fmt.Sprintf("Transcrição completa do vídeo: %s\n\n%s", t.Title, t.Text)
}
