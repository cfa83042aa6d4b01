// ABOUTME: SQLite database schema for the transcript cache and analysis log
// ABOUTME: Creates all tables and indexes for local storage
package sqlite

// SchemaVersion is stored in PRAGMA user_version once Schema is applied
const SchemaVersion = 1

// Schema contains all SQL statements for database initialization
const Schema = `
-- Whisper output keyed by video and forced language
CREATE TABLE IF NOT EXISTS transcripts (
    video_id TEXT NOT NULL,
    language TEXT NOT NULL,
    title TEXT,
    url TEXT,
    text TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (video_id, language)
);

-- One row per completed pipeline run
CREATE TABLE IF NOT EXISTS analyses (
    id TEXT PRIMARY KEY,
    video_id TEXT,
    url TEXT NOT NULL,
    title TEXT,
    summary TEXT,
    highlights TEXT,
    keywords TEXT,
    search_query TEXT,
    started_at DATETIME,
    finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_analyses_finished ON analyses(finished_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_video ON analyses(video_id);
`
