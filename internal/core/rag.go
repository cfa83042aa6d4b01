// ABOUTME: Querier answers questions from the most similar transcript chunks
// ABOUTME: Returns a fixed message instead of an error when nothing is indexed
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/newsclip/internal/config"
	"github.com/harper/newsclip/internal/llm"
	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/storage"
)

// NoIndexMessage is the answer given when no transcript has been indexed
const NoIndexMessage = "Não há transcrição indexada disponível. Por favor, transcreva um vídeo primeiro."

const ragTemperature = 0.2

// ErrEmptyQuestion is returned for blank questions
var ErrEmptyQuestion = errors.New("question is empty")

// Querier answers questions over a VectorIndex
type Querier struct {
	llm      ChatClient
	embedder Embedder
	prompts  config.Prompts
	topK     int
}

// NewQuerier creates a Querier retrieving topK chunks per question
func NewQuerier(client ChatClient, embedder Embedder, prompts config.Prompts, topK int) *Querier {
	if topK <= 0 {
		topK = 3
	}
	return &Querier{llm: client, embedder: embedder, prompts: prompts, topK: topK}
}

// Ask answers question from idx
func (q *Querier) Ask(ctx context.Context, idx *storage.VectorIndex, question string) (models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.Answer{}, ErrEmptyQuestion
	}
	if idx.Len() == 0 {
		return models.Answer{Question: question, Text: NoIndexMessage, NoIndex: true}, nil
	}

	vectors, err := q.embedder.Embed(ctx, []string{question})
	if err != nil {
		return models.Answer{}, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return models.Answer{}, fmt.Errorf("embed question: got %d vectors", len(vectors))
	}

	sources, err := idx.Search(vectors[0], q.topK)
	if err != nil {
		return models.Answer{}, err
	}

	texts := make([]string, len(sources))
	for i, s := range sources {
		texts[i] = s.Content
	}

	messages := []llm.Message{
		llm.System(q.prompts.RAGSystem),
		llm.User(config.Render(q.prompts.RAGUser, map[string]string{
			"context":  strings.Join(texts, "\n\n"),
			"question": question,
		})),
	}
	out, err := q.llm.Chat(ctx, messages, ragTemperature)
	if err != nil {
		return models.Answer{}, fmt.Errorf("answer question: %w", err)
	}

	return models.Answer{Question: question, Text: llm.StripReasoning(out), Sources: sources}, nil
}
