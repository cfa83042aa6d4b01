// ABOUTME: Unified Storage layer that wraps the transcript cache and analysis log
// ABOUTME: Safe for concurrent use by the pipeline and the HTTP server
package sqlite

import (
	"fmt"

	"github.com/harper/newsclip/internal/models"
)

// Storage manages all persistent newsclip data using SQLite
type Storage struct {
	db          *DB
	transcripts *TranscriptStore
	analyses    *AnalysisStore
}

// NewStorage initializes storage with a database at dbPath
func NewStorage(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:          db,
		transcripts: NewTranscriptStore(db),
		analyses:    NewAnalysisStore(db),
	}
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// GetTranscript returns a cached transcript or nil
func (s *Storage) GetTranscript(videoID, language string) (*models.Transcript, error) {
	if videoID == "" {
		return nil, nil
	}
	t, err := s.transcripts.Get(videoID, language)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript cache: %w", err)
	}
	return t, nil
}

// PutTranscript caches a transcript. Transcripts without a video ID are skipped.
func (s *Storage) PutTranscript(t models.Transcript) error {
	if t.VideoID == "" {
		return nil
	}
	if err := s.transcripts.Put(t); err != nil {
		return fmt.Errorf("failed to cache transcript: %w", err)
	}
	return nil
}

// SaveAnalysis records a completed analysis
func (s *Storage) SaveAnalysis(a *models.Analysis) error {
	if err := s.analyses.Save(RecordFrom(a)); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// GetAnalysis returns one analysis record or nil
func (s *Storage) GetAnalysis(id string) (*AnalysisRecord, error) {
	return s.analyses.Get(id)
}

// ListAnalyses returns recent analyses, newest first
func (s *Storage) ListAnalyses(limit int) ([]AnalysisRecord, error) {
	return s.analyses.List(limit)
}

// Stats returns counts of cached transcripts and recorded analyses
func (s *Storage) Stats() (transcripts, analyses int, err error) {
	transcripts, err = s.transcripts.Count()
	if err != nil {
		return 0, 0, err
	}
	err = s.db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&analyses)
	return transcripts, analyses, err
}
