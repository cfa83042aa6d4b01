// ABOUTME: In-memory similarity index over transcript chunks with cosine similarity search
// ABOUTME: Built once per transcript and never persisted
package storage

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/harper/newsclip/internal/models"
)

// ErrDimensionMismatch is returned when vectors disagree on length
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

type entry struct {
	chunk  models.Chunk
	vector []float32
	norm   float64
}

// VectorIndex holds chunk embeddings for a single transcript.
// It is immutable after construction and safe for concurrent reads.
type VectorIndex struct {
	entries   []entry
	dimension int
}

// NewVectorIndex builds an index from chunks and their embeddings, paired by position
func NewVectorIndex(chunks []models.Chunk, vectors [][]float32) (*VectorIndex, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	idx := &VectorIndex{entries: make([]entry, 0, len(chunks))}
	for i, c := range chunks {
		v := vectors[i]
		if len(v) == 0 {
			return nil, fmt.Errorf("chunk %d has an empty embedding", i)
		}
		if idx.dimension == 0 {
			idx.dimension = len(v)
		} else if len(v) != idx.dimension {
			return nil, fmt.Errorf("chunk %d: %w: expected %d, got %d", i, ErrDimensionMismatch, idx.dimension, len(v))
		}
		idx.entries = append(idx.entries, entry{chunk: c, vector: v, norm: norm(v)})
	}
	return idx, nil
}

// Len returns the number of indexed chunks. A nil index is empty.
func (idx *VectorIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Dimension returns the embedding length
func (idx *VectorIndex) Dimension() int {
	if idx == nil {
		return 0
	}
	return idx.dimension
}

// Chunks returns the indexed chunks in transcript order
func (idx *VectorIndex) Chunks() []models.Chunk {
	if idx == nil {
		return nil
	}
	out := make([]models.Chunk, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.chunk
	}
	return out
}

// Search returns the k chunks most similar to query, highest score first
func (idx *VectorIndex) Search(query []float32, k int) ([]models.ScoredChunk, error) {
	if idx.Len() == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, idx.dimension, len(query))
	}

	qNorm := norm(query)
	results := make([]models.ScoredChunk, len(idx.entries))
	for i, e := range idx.entries {
		results[i] = models.ScoredChunk{
			Chunk: e.chunk,
			Score: cosineSimilarity(query, e.vector, qNorm, e.norm),
		}
	}

	// Sort by similarity score (descending), ties in transcript order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosineSimilarity calculates cosine similarity between two vectors with precomputed norms
func cosineSimilarity(a, b []float32, normA, normB float64) float64 {
	if len(a) != len(b) || normA == 0 || normB == 0 {
		return 0.0
	}

	var dotProduct float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
	}
	return dotProduct / (normA * normB)
}
