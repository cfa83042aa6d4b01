// ABOUTME: Collaborator interfaces for the pipeline stages and the StageError type
// ABOUTME: Stages groups the stage implementations shared by the pipeline, agent and MCP server
package core

import (
	"context"
	"fmt"

	"github.com/harper/newsclip/internal/llm"
	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/search"
	"github.com/harper/newsclip/internal/youtube"
)

// Stage names, as recorded in steps and errors
const (
	StageTranscribe = "transcribe"
	StageSummarize  = "summarize"
	StageIndex      = "index"
	StageKeywords   = "keywords"
	StageSearch     = "search"
	StageHighlight  = "highlight"
)

// ChatClient sends prompts to a chat model
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message, temperature float32) (string, error)
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

// Embedder turns texts into vectors, one per text, in input order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SpeechToText transcribes an audio file
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Language() string
}

// AudioDownloader fetches the audio track of a video into dir
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, url, dir string) (youtube.Audio, error)
}

// TranscriptCache stores finished transcripts by video and language.
// Get returns nil, nil on a miss.
type TranscriptCache interface {
	GetTranscript(videoID, language string) (*models.Transcript, error)
	PutTranscript(t models.Transcript) error
}

// WebSearcher runs a web search
type WebSearcher interface {
	Search(ctx context.Context, query string, n int) (search.Results, error)
}

// AnalysisRecorder persists completed analyses
type AnalysisRecorder interface {
	SaveAnalysis(a *models.Analysis) error
}

// StageError reports which pipeline stage failed
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Stages bundles the stage implementations
type Stages struct {
	Transcriber *Transcriber
	Summarizer  *Summarizer
	Indexer     *Indexer
	Querier     *Querier
	Highlighter *Highlighter
	Search      WebSearcher
	// SearchResults is the result count for the pipeline's news search; 0 uses the searcher default
	SearchResults int
}
