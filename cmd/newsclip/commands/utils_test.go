// ABOUTME: Tests for shared CLI helpers and command wiring
// ABOUTME: Verifies truncation, time formatting, config loading and search wiring

package commands

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello..."},
		{"very short maxLen", "hello", 2, "he"},
		{"empty string", "", 10, ""},
		{"accented text is cut on runes", "transcrição completa", 14, "transcrição..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestOneLine(t *testing.T) {
	if got := oneLine("  linha um\n\n  linha\tdois  "); got != "linha um linha dois" {
		t.Errorf("oneLine() = %q", got)
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		input    time.Time
		contains string
	}{
		{"just now", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "h ago"},
		{"days ago", now.Add(-2 * 24 * time.Hour), "d ago"},
		{"weeks ago shows date", now.Add(-14 * 24 * time.Hour), "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTime(tt.input); !strings.Contains(got, tt.contains) {
				t.Errorf("formatTime() = %q, want to contain %q", got, tt.contains)
			}
		})
	}
}

func TestValidatePositiveInt(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{5, false},
		{0, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := validatePositiveInt(tt.n, "limit")
		if (err != nil) != tt.wantErr {
			t.Errorf("validatePositiveInt(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if err != nil && !strings.Contains(err.Error(), "limit") {
			t.Errorf("error should name the field: %v", err)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("NEWSCLIP_DATA_DIR", t.TempDir())
	t.Setenv("PROMPTS_FILE", "")
	t.Setenv("SEARCH_MAX_RESULTS", "7")

	cfg, prompts, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.SearchMaxResults != 7 {
		t.Errorf("SearchMaxResults = %d, want 7", cfg.SearchMaxResults)
	}
	if prompts.Highlights == "" || prompts.AgentSystem == "" {
		t.Error("default prompts should be loaded")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("RAG_TOP_K", "0")

	if _, _, err := loadConfig(); err == nil || !strings.Contains(err.Error(), "RAG_TOP_K") {
		t.Errorf("loadConfig() error = %v, want RAG_TOP_K validation error", err)
	}
}

func TestNewLLMClient_RequiresKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	cfg, _, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newLLMClient(cfg); err == nil {
		t.Error("newLLMClient() should fail without an API key")
	}

	cfg.LLMKey = "test-key"
	client, err := newLLMClient(cfg)
	if err != nil || client == nil {
		t.Fatalf("newLLMClient() = %v, %v", client, err)
	}
	if client.ChatModel() != cfg.LLMModel {
		t.Errorf("ChatModel() = %q, want %q", client.ChatModel(), cfg.LLMModel)
	}
}

func TestNewSearcher_WithoutRedis(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	cfg, _, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}

	searcher, cache := newSearcher(context.Background(), cfg)
	defer func() { _ = cache.Close() }()

	if cache.Redis() {
		t.Error("cache should run without Redis when REDIS_URL is empty")
	}
	if searcher.MaxResults() != cfg.SearchMaxResults {
		t.Errorf("MaxResults() = %d, want %d", searcher.MaxResults(), cfg.SearchMaxResults)
	}
}
