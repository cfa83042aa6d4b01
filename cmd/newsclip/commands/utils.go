// ABOUTME: Shared wiring and formatting helpers for CLI commands
// ABOUTME: Builds config, LLM client, storage, search and pipeline stages once per command
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/harper/newsclip/internal/config"
	"github.com/harper/newsclip/internal/core"
	"github.com/harper/newsclip/internal/llm"
	"github.com/harper/newsclip/internal/search"
	"github.com/harper/newsclip/internal/session"
	"github.com/harper/newsclip/internal/storage/sqlite"
	"github.com/harper/newsclip/internal/youtube"
)

const searchCacheEntries = 256

// app holds everything a command needs to run the pipeline
type app struct {
	cfg      *config.Config
	prompts  config.Prompts
	client   *llm.OpenAIClient
	store    *sqlite.Storage
	cache    *search.Cache
	searcher *search.Client
	stages   *core.Stages
	sess     *session.Session
}

// loadConfig reads .env, the environment and the prompt overrides
func loadConfig() (*config.Config, config.Prompts, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.Any("error", err))
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, config.Prompts{}, fmt.Errorf("invalid configuration: %w", err)
	}
	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return nil, config.Prompts{}, err
	}
	return cfg, prompts, nil
}

// newSearcher builds the web search client with its cache
func newSearcher(ctx context.Context, cfg *config.Config) (*search.Client, *search.Cache) {
	cache := search.NewCache(ctx, cfg.RedisURL, cfg.SearchCacheTTL, searchCacheEntries)
	client := search.NewClient(search.Options{
		Region:     cfg.SearchRegion,
		MaxResults: cfg.SearchMaxResults,
		Interval:   cfg.SearchInterval,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Cache:      cache,
	})
	return client, cache
}

// newLLMClient builds the OpenAI-compatible client
func newLLMClient(cfg *config.Config) (*llm.OpenAIClient, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	client, err := llm.NewOpenAIClient(llm.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	return client, nil
}

// newApp wires config, storage, the LLM client and every pipeline stage
func newApp(ctx context.Context) (*app, error) {
	cfg, prompts, err := loadConfig()
	if err != nil {
		return nil, err
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireOpenAI(); err != nil {
		slog.Warn("transcription and question answering will fail", slog.Any("error", err))
	}

	store, err := sqlite.NewStorage(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var transcripts core.TranscriptCache
	if cfg.TranscriptCache {
		transcripts = store
	}

	searcher, cache := newSearcher(ctx, cfg)

	stages := &core.Stages{
		Transcriber: core.NewTranscriber(youtube.NewDownloader(nil, cfg.YTDLPPath), client, transcripts),
		Summarizer: core.NewSummarizer(client, prompts, core.SummarizerConfig{
			Threshold:      cfg.SummaryThreshold,
			ChunkChars:     cfg.SummaryChunkChars,
			PromptMaxChars: cfg.PromptMaxChars,
		}),
		Indexer:       core.NewIndexer(client, cfg.IndexChunkSize, cfg.IndexChunkOverlap),
		Querier:       core.NewQuerier(client, client, prompts, cfg.RAGTopK),
		Highlighter:   core.NewHighlighter(client, prompts, cfg.PromptMaxChars),
		Search:        searcher,
		SearchResults: cfg.SearchMaxResults,
	}

	slog.Debug("newsclip initialized",
		slog.String("model", client.ChatModel()),
		slog.String("data_dir", cfg.DataDir),
		slog.Bool("redis", cache.Redis()))

	return &app{
		cfg:      cfg,
		prompts:  prompts,
		client:   client,
		store:    store,
		cache:    cache,
		searcher: searcher,
		stages:   stages,
		sess:     session.New(),
	}, nil
}

// pipeline returns an orchestrator that records finished analyses
func (a *app) pipeline() *core.Pipeline {
	return core.NewPipeline(a.stages, a.store)
}

// Close releases storage and cache connections
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("error closing storage", slog.Any("error", err))
	}
	if err := a.cache.Close(); err != nil {
		slog.Warn("error closing cache", slog.Any("error", err))
	}
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// oneLine collapses whitespace so previews fit in a table cell
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
