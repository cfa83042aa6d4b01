// ABOUTME: Indexer splits a transcript into overlapping chunks and embeds them
// ABOUTME: Produces the in-memory similarity index used for question answering
package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harper/newsclip/internal/storage"
)

// Indexer builds similarity indexes
type Indexer struct {
	embedder Embedder
	engine   *ChunkEngine
	size     int
	overlap  int
}

// NewIndexer creates an Indexer with the given chunk size and overlap, in characters
func NewIndexer(embedder Embedder, size, overlap int) *Indexer {
	return &Indexer{embedder: embedder, engine: NewChunkEngine(), size: size, overlap: overlap}
}

// Index chunks text, embeds every chunk and returns the index
func (ix *Indexer) Index(ctx context.Context, text string) (*storage.VectorIndex, error) {
	chunks, err := ix.engine.Overlapping(text, ix.size, ix.overlap)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}

	vectors, err := ix.embedder.Embed(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	idx, err := storage.NewVectorIndex(chunks, vectors)
	if err != nil {
		return nil, err
	}

	slog.Debug("built index", slog.Int("chunks", idx.Len()), slog.Int("dimension", idx.Dimension()))
	return idx, nil
}
