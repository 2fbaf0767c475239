package driven

import "context"

// VectorIndex provides nearest-neighbour search over corpus embeddings.
// The index is derived data: it is rebuilt from corpus entries and never
// treated as authoritative.
type VectorIndex interface {
	// Add inserts a vector under the given ID.
	Add(ctx context.Context, id string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched vector's ID.
	ID string

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}
