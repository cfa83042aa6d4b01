// ABOUTME: Transcript cache operations for SQLite
// ABOUTME: Avoids paying for a second Whisper call on a video already transcribed
package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/harper/newsclip/internal/models"
)

// TranscriptStore handles transcript persistence
type TranscriptStore struct {
	db *DB
}

// NewTranscriptStore creates a new TranscriptStore
func NewTranscriptStore(db *DB) *TranscriptStore {
	return &TranscriptStore{db: db}
}

// Get returns the cached transcript for a video and language, or nil when absent
func (s *TranscriptStore) Get(videoID, language string) (*models.Transcript, error) {
	var (
		t     models.Transcript
		title sql.NullString
		url   sql.NullString
	)

	err := s.db.QueryRow(`
		SELECT video_id, language, title, url, text, created_at
		FROM transcripts
		WHERE video_id = ? AND language = ?
	`, videoID, language).Scan(&t.VideoID, &t.Language, &title, &url, &t.Text, &t.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.Title = title.String
	t.URL = url.String
	t.Cached = true
	return &t, nil
}

// Put stores or replaces a transcript
func (s *TranscriptStore) Put(t models.Transcript) error {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO transcripts (video_id, language, title, url, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id, language) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			text = excluded.text,
			created_at = excluded.created_at
	`, t.VideoID, t.Language, nullString(t.Title), nullString(t.URL), t.Text, createdAt)

	return err
}

// Delete removes a cached transcript
func (s *TranscriptStore) Delete(videoID, language string) error {
	_, err := s.db.Exec(`DELETE FROM transcripts WHERE video_id = ? AND language = ?`, videoID, language)
	return err
}

// Count returns the number of cached transcripts
func (s *TranscriptStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM transcripts`).Scan(&n)
	return n, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
