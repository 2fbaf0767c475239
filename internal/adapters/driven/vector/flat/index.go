// Package flat provides an exact, in-memory nearest-neighbour index.
//
// Vectors are normalised on insert so a search is one dot product per stored
// vector. Corpus sizes are in the hundreds to low thousands of entries, where
// an exact scan is both fast enough and free of approximation error.
package flat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// ErrDimensionMismatch indicates a vector of the wrong size.
var ErrDimensionMismatch = errors.New("flat: dimension mismatch")

// Index is an exact cosine-similarity index.
type Index struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	vectors   [][]float32
	positions map[string]int
	closed    bool
}

// New creates an empty index for vectors of the given dimension.
// A dimension of zero is fixed by the first vector added.
func New(dimension int) *Index {
	return &Index{
		dimension: dimension,
		positions: make(map[string]int),
	}
}

// Add inserts a vector under id, replacing any vector already stored under it.
// Zero vectors are rejected since they have no direction.
func (idx *Index) Add(_ context.Context, id string, embedding []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return domain.ErrVectorIndexUnavailable
	}
	if idx.dimension == 0 {
		idx.dimension = len(embedding)
	}
	if len(embedding) != idx.dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), idx.dimension)
	}

	unit, ok := normalise(embedding)
	if !ok {
		return fmt.Errorf("flat: zero vector for %q: %w", id, domain.ErrInvalidInput)
	}

	if pos, exists := idx.positions[id]; exists {
		idx.vectors[pos] = unit
		return nil
	}
	idx.positions[id] = len(idx.ids)
	idx.ids = append(idx.ids, id)
	idx.vectors = append(idx.vectors, unit)
	return nil
}

// Search returns the k most similar vectors, most similar first.
// Ties are broken by ID so results are deterministic.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if k <= 0 || len(idx.ids) == 0 {
		return nil, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), idx.dimension)
	}
	q, ok := normalise(query)
	if !ok {
		return nil, nil
	}

	hits := make([]driven.VectorHit, len(idx.ids))
	for i, v := range idx.vectors {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = driven.VectorHit{ID: idx.ids[i], Similarity: dot(q, v)}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].ID < hits[b].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

// Dimension returns the vector size, zero if still unset.
func (idx *Index) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimension
}

// Close releases the stored vectors. Further calls fail.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	idx.ids = nil
	idx.vectors = nil
	idx.positions = nil
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b,
// or 0 when either is a zero vector or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dotP, normA, normB float64
	for i := range a {
		dotP += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotP / (math.Sqrt(normA) * math.Sqrt(normB))
}

func normalise(v []float32) ([]float32, bool) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return nil, false
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, true
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
