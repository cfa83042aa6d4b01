// ABOUTME: OpenAI-compatible client for chat completions, embeddings and Whisper transcription
// ABOUTME: Chat goes to the configured LLM endpoint (Groq by default); audio and embeddings to OpenAI
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/harper/newsclip/internal/config"
	"github.com/harper/newsclip/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// Chat roles
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is a single role-tagged chat message
type Message struct {
	Role    string
	Content string
}

// System builds a system message
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant message
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Endpoint is an OpenAI-compatible API location
type Endpoint struct {
	APIKey  string
	BaseURL string
}

// ClientConfig holds configuration for the client
type ClientConfig struct {
	Chat      Endpoint
	Speech    Endpoint
	Embedding Endpoint

	ChatModel      string
	WhisperModel   string
	EmbeddingModel string
	Language       string
	MaxTokens      int
	EmbedBatchSize int

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// ConfigFrom maps the application config onto a client config
func ConfigFrom(cfg *config.Config) *ClientConfig {
	return &ClientConfig{
		Chat:           Endpoint{APIKey: cfg.LLMKey, BaseURL: cfg.LLMBaseURL},
		Speech:         Endpoint{APIKey: cfg.OpenAIKey, BaseURL: cfg.OpenAIBaseURL},
		Embedding:      Endpoint{APIKey: cfg.EmbeddingKey, BaseURL: cfg.EmbeddingBaseURL},
		ChatModel:      cfg.LLMModel,
		WhisperModel:   cfg.WhisperModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Language:       cfg.TranscribeLanguage,
		MaxTokens:      cfg.LLMMaxTokens,
		EmbedBatchSize: cfg.EmbedBatchSize,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	}
}

// OpenAIClient wraps three go-openai clients with retry logic
type OpenAIClient struct {
	chat   *openai.Client
	speech *openai.Client
	embed  *openai.Client

	chatModel      string
	whisperModel   string
	embeddingModel openai.EmbeddingModel
	language       string
	maxTokens      int
	batchSize      int
	timeout        time.Duration
	retry          util.RetryConfig
}

// NewOpenAIClient creates a client. Only the chat endpoint key is required;
// transcription and embeddings fail at call time when their key is missing.
func NewOpenAIClient(cc *ClientConfig) (*OpenAIClient, error) {
	if cc.Chat.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	if cc.Timeout <= 0 {
		cc.Timeout = 120 * time.Second
	}
	if cc.EmbedBatchSize <= 0 {
		cc.EmbedBatchSize = 64
	}

	return &OpenAIClient{
		chat:           newClient(cc.Chat),
		speech:         newClient(cc.Speech),
		embed:          newClient(cc.Embedding),
		chatModel:      cc.ChatModel,
		whisperModel:   cc.WhisperModel,
		embeddingModel: openai.EmbeddingModel(cc.EmbeddingModel),
		language:       cc.Language,
		maxTokens:      cc.MaxTokens,
		batchSize:      cc.EmbedBatchSize,
		timeout:        cc.Timeout,
		retry: util.RetryConfig{
			MaxRetries: cc.MaxRetries,
			BaseDelay:  cc.RetryDelay,
			Retryable:  IsRetryable,
		},
	}, nil
}

func newClient(ep Endpoint) *openai.Client {
	if ep.APIKey == "" {
		return nil
	}
	oc := openai.DefaultConfig(ep.APIKey)
	if ep.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(ep.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{}
	return openai.NewClientWithConfig(oc)
}

// ChatModel returns the configured chat model name
func (c *OpenAIClient) ChatModel() string {
	return c.chatModel
}

// Chat sends role-tagged messages and returns the first choice's content
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	start := time.Now()
	content, err := util.Retry(ctx, c.retry, func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.chat.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", ErrNoChoices
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	slog.Debug("chat completion",
		slog.String("model", c.chatModel),
		slog.Int("messages", len(messages)),
		slog.Duration("took", time.Since(start)))
	return content, nil
}

// Complete sends a single user prompt
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	return c.Chat(ctx, []Message{User(prompt)}, temperature)
}

// Embed returns one vector per input text, in input order, batching requests
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.embed == nil {
		return nil, fmt.Errorf("embedding API key is required")
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		batch := texts[start:end]

		vectors, err := util.Retry(ctx, c.retry, func(ctx context.Context) ([][]float32, error) {
			ctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			resp, err := c.embed.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
				Input: batch,
				Model: c.embeddingModel,
			})
			if err != nil {
				return nil, err
			}
			if len(resp.Data) != len(batch) {
				return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(resp.Data))
			}

			// Providers may return data out of order
			data := resp.Data
			sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
			batchVecs := make([][]float32, len(data))
			for i, d := range data {
				batchVecs[i] = d.Embedding
			}
			return batchVecs, nil
		})
		if err != nil {
			return nil, fmt.Errorf("embeddings batch %d-%d: %w", start, end, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// Transcribe sends an audio file to Whisper with the configured language forced
func (c *OpenAIClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if c.speech == nil {
		return "", fmt.Errorf("OpenAI API key is required for transcription")
	}

	text, err := util.Retry(ctx, c.retry, func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.speech.CreateTranscription(ctx, openai.AudioRequest{
			Model:    c.whisperModel,
			FilePath: audioPath,
			Language: c.language,
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Language returns the forced transcription language
func (c *OpenAIClient) Language() string {
	return c.language
}

// ListModels returns the model IDs available on the chat endpoint, sorted
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := util.Retry(ctx, c.retry, func(ctx context.Context) (openai.ModelsList, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.chat.ListModels(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// ErrNoChoices is returned when a completion response has no choices
var ErrNoChoices = errors.New("no completion choices returned")

// IsRetryable classifies go-openai errors by HTTP status, falling back to
// network-level transient checks
func IsRetryable(err error) bool {
	if errors.Is(err, ErrNoChoices) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return util.RetryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return util.RetryableStatus(reqErr.HTTPStatusCode)
	}

	return util.IsTransient(err)
}
