// ABOUTME: Analysis log operations for SQLite
// ABOUTME: Records each completed pipeline run so past highlights can be listed and exported
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/newsclip/internal/models"
)

// AnalysisRecord is the persisted view of a completed analysis.
// The transcript itself lives in the transcript cache.
type AnalysisRecord struct {
	ID          string    `json:"id" yaml:"id"`
	VideoID     string    `json:"video_id" yaml:"video_id"`
	URL         string    `json:"url" yaml:"url"`
	Title       string    `json:"title" yaml:"title"`
	Summary     string    `json:"summary" yaml:"summary"`
	Highlights  string    `json:"highlights" yaml:"highlights"`
	Keywords    string    `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	SearchQuery string    `json:"search_query,omitempty" yaml:"search_query,omitempty"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time `json:"finished_at" yaml:"finished_at"`
}

// RecordFrom converts a completed analysis into a record
func RecordFrom(a *models.Analysis) AnalysisRecord {
	return AnalysisRecord{
		ID:          a.ID,
		VideoID:     a.Transcript.VideoID,
		URL:         a.URL,
		Title:       a.Transcript.Title,
		Summary:     a.Summary.Text,
		Highlights:  a.Highlights.Text,
		Keywords:    a.Highlights.Keywords,
		SearchQuery: a.Highlights.SearchQuery,
		StartedAt:   a.StartedAt,
		FinishedAt:  a.FinishedAt,
	}
}

// AnalysisStore handles analysis persistence
type AnalysisStore struct {
	db *DB
}

// NewAnalysisStore creates a new AnalysisStore
func NewAnalysisStore(db *DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// Save inserts or replaces an analysis record
func (s *AnalysisStore) Save(r AnalysisRecord) error {
	if r.ID == "" {
		return errors.New("analysis ID is required")
	}
	if r.URL == "" {
		return errors.New("analysis URL is required")
	}

	_, err := s.db.Exec(`
		INSERT INTO analyses (id, video_id, url, title, summary, highlights, keywords, search_query, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			summary = excluded.summary,
			highlights = excluded.highlights,
			keywords = excluded.keywords,
			search_query = excluded.search_query,
			finished_at = excluded.finished_at
	`, r.ID, nullString(r.VideoID), r.URL, nullString(r.Title), nullString(r.Summary),
		nullString(r.Highlights), nullString(r.Keywords), nullString(r.SearchQuery),
		r.StartedAt, r.FinishedAt)

	return err
}

// Get retrieves an analysis by ID, or nil when absent
func (s *AnalysisStore) Get(id string) (*AnalysisRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, video_id, url, title, summary, highlights, keywords, search_query, started_at, finished_at
		FROM analyses
		WHERE id = ?
	`, id)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns the most recent analyses, newest first. limit <= 0 returns all.
func (s *AnalysisStore) List(limit int) ([]AnalysisRecord, error) {
	query := `
		SELECT id, video_id, url, title, summary, highlights, keywords, search_query, started_at, finished_at
		FROM analyses
		ORDER BY finished_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []AnalysisRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*AnalysisRecord, error) {
	var (
		r                                                        AnalysisRecord
		videoID, title, summary, highlights, keywords, searchQry sql.NullString
	)
	err := row.Scan(&r.ID, &videoID, &r.URL, &title, &summary, &highlights, &keywords, &searchQry,
		&r.StartedAt, &r.FinishedAt)
	if err != nil {
		return nil, err
	}
	r.VideoID = videoID.String
	r.Title = title.String
	r.Summary = summary.String
	r.Highlights = highlights.String
	r.Keywords = keywords.String
	r.SearchQuery = searchQry.String
	return &r, nil
}
