// ABOUTME: Centralized configuration for the newsclip pipeline, agent and servers
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Config holds all configuration for newsclip
type Config struct {
	// Chat completion endpoint (OpenAI-compatible, Groq by default)
	LLMKey       string
	LLMBaseURL   string
	LLMModel     string
	LLMMaxTokens int

	// OpenAI endpoint for Whisper and embeddings
	OpenAIKey          string
	OpenAIBaseURL      string
	WhisperModel       string
	TranscribeLanguage string
	EmbeddingModel     string
	EmbeddingBaseURL   string
	EmbeddingKey       string
	EmbedBatchSize     int

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Pipeline settings
	SummaryThreshold  int
	SummaryChunkChars int
	IndexChunkSize    int
	IndexChunkOverlap int
	RAGTopK           int
	PromptMaxChars    int

	// Web search
	SearchMaxResults int
	SearchRegion     string
	SearchInterval   time.Duration
	SearchCacheTTL   time.Duration
	RedisURL         string

	AgentMaxSteps int
	YTDLPPath     string

	TranscriptCache bool
	DataDir         string
	PromptsFile     string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		LLMKey:       getEnv("LLM_API_KEY", os.Getenv("GROQ_API_KEY")),
		LLMBaseURL:   getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:     getEnv("LLM_MODEL", "deepseek-r1-distill-llama-70b"),
		LLMMaxTokens: getEnvInt("LLM_MAX_TOKENS", 4096),

		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		WhisperModel:       getEnv("WHISPER_MODEL", "whisper-1"),
		TranscribeLanguage: getEnv("TRANSCRIBE_LANGUAGE", "pt"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingBaseURL:   os.Getenv("EMBEDDING_BASE_URL"),
		EmbeddingKey:       os.Getenv("EMBEDDING_API_KEY"),
		EmbedBatchSize:     getEnvInt("EMBED_BATCH_SIZE", 64),

		Timeout:    getEnvDuration("LLM_TIMEOUT", 120*time.Second),
		MaxRetries: getEnvInt("LLM_MAX_RETRIES", 3),
		RetryDelay: getEnvDuration("LLM_RETRY_DELAY", 2*time.Second),

		SummaryThreshold:  getEnvInt("SUMMARY_THRESHOLD", 3000),
		SummaryChunkChars: getEnvInt("SUMMARY_CHUNK_CHARS", 3000),
		IndexChunkSize:    getEnvInt("INDEX_CHUNK_SIZE", 500),
		IndexChunkOverlap: getEnvInt("INDEX_CHUNK_OVERLAP", 50),
		RAGTopK:           getEnvInt("RAG_TOP_K", 3),
		PromptMaxChars:    getEnvInt("PROMPT_MAX_CHARS", 12000),

		SearchMaxResults: getEnvInt("SEARCH_MAX_RESULTS", 5),
		SearchRegion:     getEnv("SEARCH_REGION", "br-pt"),
		SearchInterval:   getEnvDuration("SEARCH_RATE", time.Second),
		SearchCacheTTL:   getEnvDuration("SEARCH_CACHE_TTL", 15*time.Minute),
		RedisURL:         os.Getenv("REDIS_URL"),

		AgentMaxSteps: getEnvInt("AGENT_MAX_STEPS", 8),
		YTDLPPath:     getEnv("YTDLP_PATH", "yt-dlp"),

		TranscriptCache: getEnvBool("TRANSCRIPT_CACHE", true),
		DataDir:         getEnv("NEWSCLIP_DATA_DIR", DefaultDataDir()),
		PromptsFile:     getEnv("PROMPTS_FILE", "prompts.yaml"),
	}

	// Embeddings default to the OpenAI endpoint and key
	if cfg.EmbeddingBaseURL == "" {
		cfg.EmbeddingBaseURL = cfg.OpenAIBaseURL
	}
	if cfg.EmbeddingKey == "" {
		cfg.EmbeddingKey = cfg.OpenAIKey
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges and the relationships between settings
func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("LLM_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLMMaxTokens)
	}
	if c.SummaryChunkChars <= 0 {
		return fmt.Errorf("SUMMARY_CHUNK_CHARS must be positive, got %d", c.SummaryChunkChars)
	}
	if c.IndexChunkSize <= 0 {
		return fmt.Errorf("INDEX_CHUNK_SIZE must be positive, got %d", c.IndexChunkSize)
	}
	if c.IndexChunkOverlap < 0 || c.IndexChunkOverlap >= c.IndexChunkSize {
		return fmt.Errorf("INDEX_CHUNK_OVERLAP must be in [0, INDEX_CHUNK_SIZE), got %d", c.IndexChunkOverlap)
	}
	if c.RAGTopK <= 0 || c.RAGTopK > 20 {
		return fmt.Errorf("RAG_TOP_K must be 1-20, got %d", c.RAGTopK)
	}
	if c.SearchMaxResults <= 0 || c.SearchMaxResults > 25 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be 1-25, got %d", c.SearchMaxResults)
	}
	if c.AgentMaxSteps <= 0 || c.AgentMaxSteps > 50 {
		return fmt.Errorf("AGENT_MAX_STEPS must be 1-50, got %d", c.AgentMaxSteps)
	}
	if c.EmbedBatchSize <= 0 {
		return fmt.Errorf("EMBED_BATCH_SIZE must be positive, got %d", c.EmbedBatchSize)
	}
	if c.PromptMaxChars < 1000 {
		return fmt.Errorf("PROMPT_MAX_CHARS must be at least 1000, got %d", c.PromptMaxChars)
	}
	return nil
}

// RequireLLM returns an error when no chat completion key is configured
func (c *Config) RequireLLM() error {
	if c.LLMKey == "" {
		return fmt.Errorf("LLM_API_KEY (or GROQ_API_KEY) is required")
	}
	return nil
}

// RequireOpenAI returns an error when no Whisper/embedding key is configured
func (c *Config) RequireOpenAI() error {
	if c.OpenAIKey == "" && c.EmbeddingKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for transcription and embeddings")
	}
	return nil
}

// DBPath returns the transcript cache location
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "newsclip.db")
}

// DefaultDataDir returns the XDG data directory for newsclip
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "newsclip")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
