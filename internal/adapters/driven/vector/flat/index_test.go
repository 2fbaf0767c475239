package flat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

func TestIndex_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := New(3)

	require.NoError(t, idx.Add(ctx, "x", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "y", []float32{0, 1, 0}))
	require.NoError(t, idx.Add(ctx, "xy", []float32{1, 1, 0}))

	hits, err := idx.Search(ctx, []float32{2, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "x", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "xy", hits[1].ID)
	assert.InDelta(t, 0.7071, hits[1].Similarity, 1e-3)
}

func TestIndex_TiesBrokenByID(t *testing.T) {
	ctx := context.Background()
	idx := New(2)
	require.NoError(t, idx.Add(ctx, "b", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "a", []float32{3, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "b", hits[1].ID)
}

func TestIndex_ReplaceExisting(t *testing.T) {
	ctx := context.Background()
	idx := New(2)
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "a", []float32{0, 1}))

	assert.Equal(t, 1, idx.Len())
	hits, err := idx.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestIndex_DimensionFromFirstVector(t *testing.T) {
	ctx := context.Background()
	idx := New(0)
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 2, 3, 4}))
	assert.Equal(t, 4, idx.Dimension())

	err := idx.Add(ctx, "b", []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIndex_RejectsZeroVector(t *testing.T) {
	idx := New(2)
	err := idx.Add(context.Background(), "z", []float32{0, 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_EmptyAndZeroK(t *testing.T) {
	ctx := context.Background()
	idx := New(2)

	hits, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	hits, err = idx.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_Close(t *testing.T) {
	ctx := context.Background()
	idx := New(2)
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Close())

	_, err := idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	assert.ErrorIs(t, idx.Add(ctx, "b", []float32{1, 0}), domain.ErrVectorIndexUnavailable)
}

func TestIndex_CancelledContext(t *testing.T) {
	idx := New(2)
	require.NoError(t, idx.Add(context.Background(), "a", []float32{1, 0}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 1}))
	assert.Zero(t, CosineSimilarity(nil, nil))
}
