// ABOUTME: Tests for the unified Storage layer
// ABOUTME: Covers transcript cache round-trips and the analysis log
package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/newsclip/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTranscriptCache_RoundTrip(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.GetTranscript("dQw4w9WgXcQ", "pt")
	if err != nil || got != nil {
		t.Fatalf("GetTranscript() on empty cache = %v, %v", got, err)
	}

	tr := models.Transcript{
		VideoID:   "dQw4w9WgXcQ",
		Title:     "Entrevista com o ministro",
		URL:       "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Text:      "Boa noite. Hoje falamos sobre o orçamento.",
		Language:  "pt",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.PutTranscript(tr); err != nil {
		t.Fatalf("PutTranscript() error = %v", err)
	}

	got, err = s.GetTranscript("dQw4w9WgXcQ", "pt")
	if err != nil {
		t.Fatalf("GetTranscript() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetTranscript() returned nil after Put")
	}
	if got.Text != tr.Text || got.Title != tr.Title || got.URL != tr.URL {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.Cached {
		t.Error("cached transcript should be marked Cached")
	}
	if !got.CreatedAt.Equal(tr.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, tr.CreatedAt)
	}

	// Different language is a different entry
	if other, _ := s.GetTranscript("dQw4w9WgXcQ", "en"); other != nil {
		t.Error("language should be part of the cache key")
	}
}

func TestTranscriptCache_Upsert(t *testing.T) {
	s := newTestStorage(t)

	tr := models.Transcript{VideoID: "abc123def45", Language: "pt", Text: "primeira versão"}
	_ = s.PutTranscript(tr)
	tr.Text = "segunda versão"
	if err := s.PutTranscript(tr); err != nil {
		t.Fatalf("PutTranscript() upsert error = %v", err)
	}

	got, _ := s.GetTranscript("abc123def45", "pt")
	if got == nil || got.Text != "segunda versão" {
		t.Errorf("upsert did not replace text: %+v", got)
	}

	n, _, err := s.Stats()
	if err != nil || n != 1 {
		t.Errorf("Stats() transcripts = %d, %v, want 1", n, err)
	}
}

func TestTranscriptCache_SkipsEmptyVideoID(t *testing.T) {
	s := newTestStorage(t)

	if err := s.PutTranscript(models.Transcript{Text: "sem id"}); err != nil {
		t.Errorf("PutTranscript() error = %v", err)
	}
	if n, _, _ := s.Stats(); n != 0 {
		t.Errorf("transcript without video ID was stored")
	}
	if got, err := s.GetTranscript("", "pt"); got != nil || err != nil {
		t.Errorf("GetTranscript(\"\") = %v, %v", got, err)
	}
}

func TestAnalyses_SaveAndList(t *testing.T) {
	s := newTestStorage(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, title := range []string{"primeiro", "segundo", "terceiro"} {
		a := &models.Analysis{
			ID:         "analysis_" + title,
			URL:        "https://youtu.be/video" + title,
			Transcript: models.Transcript{VideoID: "vid_" + title, Title: title},
			Summary:    models.Summary{Text: "resumo " + title},
			Highlights: models.Highlights{Text: "## Destaque 1: " + title, Keywords: "a, b"},
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		}
		if err := s.SaveAnalysis(a); err != nil {
			t.Fatalf("SaveAnalysis() error = %v", err)
		}
	}

	records, err := s.ListAnalyses(2)
	if err != nil {
		t.Fatalf("ListAnalyses() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Title != "terceiro" || records[1].Title != "segundo" {
		t.Errorf("records not newest first: %s, %s", records[0].Title, records[1].Title)
	}

	got, err := s.GetAnalysis("analysis_primeiro")
	if err != nil || got == nil {
		t.Fatalf("GetAnalysis() = %v, %v", got, err)
	}
	if got.Summary != "resumo primeiro" || got.Keywords != "a, b" || got.VideoID != "vid_primeiro" {
		t.Errorf("unexpected record: %+v", got)
	}

	missing, err := s.GetAnalysis("nope")
	if err != nil || missing != nil {
		t.Errorf("GetAnalysis(missing) = %v, %v", missing, err)
	}

	_, analyses, _ := s.Stats()
	if analyses != 3 {
		t.Errorf("Stats() analyses = %d, want 3", analyses)
	}
}

func TestAnalyses_Validation(t *testing.T) {
	s := newTestStorage(t)
	if err := s.SaveAnalysis(&models.Analysis{URL: "https://youtu.be/x"}); err == nil {
		t.Error("expected error for missing ID")
	}
	if err := s.SaveAnalysis(&models.Analysis{ID: "a1"}); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestNewStorage_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "newsclip.db")
	s, err := NewStorage(path)
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	_ = s.PutTranscript(models.Transcript{VideoID: "v1", Language: "pt", Text: "texto"})
	_ = s.Close()

	reopened, err := NewStorage(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, _ := reopened.GetTranscript("v1", "pt")
	if got == nil || got.Text != "texto" {
		t.Errorf("transcript did not persist: %+v", got)
	}
}
