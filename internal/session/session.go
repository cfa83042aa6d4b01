// ABOUTME: Session holds the artifacts of the current video and the conversation history
// ABOUTME: Derived artifacts are replaced together on Commit so they always match the transcript
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/storage"
)

// ErrNoTranscript is returned when an operation needs a transcript and none is loaded
var ErrNoTranscript = errors.New("no transcript available")

// Artifact file names, as offered for download
const (
	TranscriptFile = "transcricao_video.txt"
	SummaryFile    = "resumo_video.txt"
	HighlightsFile = "destaques_jornalisticos.md"
)

// Session is the explicit context object shared by the pipeline, the agent
// tools and the presentation layers. Safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	transcript *models.Transcript
	summary    *models.Summary
	highlights *models.Highlights
	index      *storage.VectorIndex

	analysis *models.Analysis
	history  []models.Message
}

// New creates an empty session
func New() *Session {
	return &Session{}
}

// Commit atomically replaces every derived artifact with the output of a
// completed analysis
func (s *Session) Commit(a *models.Analysis, idx *storage.VectorIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := a.Transcript
	sum := a.Summary
	h := a.Highlights
	s.transcript = &t
	s.summary = &sum
	s.highlights = &h
	s.index = idx
	s.analysis = a
}

// SetTranscript loads a new transcript and drops artifacts derived from the old one
func (s *Session) SetTranscript(t models.Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript = &t
	s.summary = nil
	s.highlights = nil
	s.index = nil
	s.analysis = nil
}

// SetSummary stores a summary for the current transcript
func (s *Session) SetSummary(sum models.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = &sum
}

// SetIndex stores the similarity index for the current transcript
func (s *Session) SetIndex(idx *storage.VectorIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = idx
}

// SetHighlights stores highlights for the current transcript
func (s *Session) SetHighlights(h models.Highlights) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlights = &h
}

// Transcript returns the current transcript
func (s *Session) Transcript() (models.Transcript, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.transcript == nil {
		return models.Transcript{}, false
	}
	return *s.transcript, true
}

// Summary returns the current summary
func (s *Session) Summary() (models.Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return models.Summary{}, false
	}
	return *s.summary, true
}

// Highlights returns the current highlights
func (s *Session) Highlights() (models.Highlights, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.highlights == nil {
		return models.Highlights{}, false
	}
	return *s.highlights, true
}

// Index returns the similarity index, or nil when none is built
func (s *Session) Index() *storage.VectorIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Context returns the best text for downstream prompts: the summary when
// there is one, otherwise the transcript
func (s *Session) Context() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary != nil && s.summary.Text != "" {
		return s.summary.Text, nil
	}
	if s.transcript != nil {
		return s.transcript.Text, nil
	}
	return "", ErrNoTranscript
}

// AddMessage appends a validated message to the conversation history
func (s *Session) AddMessage(role models.Role, content string) (*models.Message, error) {
	msg, err := models.NewMessage(role, content)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, *msg)
	return msg, nil
}

// AddError records a failure as an assistant message flagged as an error
func (s *Session) AddError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, models.Message{
		ID:      fmt.Sprintf("msg_err_%d", len(s.history)),
		Role:    models.RoleAssistant,
		Content: err.Error(),
		At:      time.Now().UTC(),
		IsError: true,
	})
}

// History returns a copy of the conversation history
func (s *Session) History() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// Reset clears everything
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	s.summary = nil
	s.highlights = nil
	s.index = nil
	s.analysis = nil
	s.history = nil
}

// Snapshot is an immutable copy of the session for rendering
type Snapshot struct {
	Transcript *models.Transcript `json:"transcript,omitempty"`
	Summary    *models.Summary    `json:"summary,omitempty"`
	Highlights *models.Highlights `json:"highlights,omitempty"`
	Indexed    bool               `json:"indexed"`
	Chunks     int                `json:"chunks"`
	Steps      []models.Step      `json:"steps,omitempty"`
	History    []models.Message   `json:"history"`
}

// Snapshot copies the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Indexed: s.index.Len() > 0,
		Chunks:  s.index.Len(),
		History: slices.Clone(s.history),
	}
	if s.transcript != nil {
		t := *s.transcript
		snap.Transcript = &t
	}
	if s.summary != nil {
		sum := *s.summary
		snap.Summary = &sum
	}
	if s.highlights != nil {
		h := *s.highlights
		snap.Highlights = &h
	}
	if s.analysis != nil {
		snap.Steps = slices.Clone(s.analysis.Steps)
	}
	if snap.History == nil {
		snap.History = []models.Message{}
	}
	return snap
}

// Artifact returns the download file name and content for kind
// ("transcript", "summary" or "highlights")
func (s *Session) Artifact(kind string) (name, content string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case "transcript":
		if s.transcript != nil {
			return TranscriptFile, s.transcript.Text, true
		}
	case "summary":
		if s.summary != nil {
			return SummaryFile, s.summary.Text, true
		}
	case "highlights":
		if s.highlights != nil {
			return HighlightsFile, s.highlights.Text, true
		}
	}
	return "", "", false
}

// Export writes the available artifacts into dir and returns the written paths
func (s *Session) Export(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var written []string
	for _, kind := range []string{"transcript", "summary", "highlights"} {
		name, content, ok := s.Artifact(kind)
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, path)
	}

	if len(written) == 0 {
		return nil, ErrNoTranscript
	}
	return written, nil
}
