// Package embedding holds helpers shared by the embedding provider adapters.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Defaults for splitting corpus texts into provider requests.
const (
	DefaultBatchSize   = 64
	DefaultParallelism = 2
)

// BatchFunc embeds one slice of texts and returns one vector per input.
type BatchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Batch splits texts into slices of at most size and embeds up to parallel
// slices at once. The result is in input order. The first failure cancels
// the remaining requests.
func Batch(ctx context.Context, texts []string, size, parallel int, embed BatchFunc) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if size <= 0 {
		size = DefaultBatchSize
	}
	if parallel <= 0 {
		parallel = DefaultParallelism
	}

	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vecs, err := embed(gctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(vecs) != end-start {
				return fmt.Errorf("got %d embeddings for %d inputs", len(vecs), end-start)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Float32 converts a decoded JSON vector to the index representation.
func Float32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
