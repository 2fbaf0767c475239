// Package scoring assigns local scores to segments and sentences without any
// network call.
//
// Three backend tiers exist: a pluggable classifier, a bigram perplexity
// model, and a lexical heuristic that is always available. Negotiate picks
// one tier at startup and a Scorer uses only that tier for its lifetime, so
// every sentence of a run is scored consistently.
package scoring

import (
	"context"
	"fmt"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/logger"
)

// Scorer scores segments concurrently on a fixed worker pool.
type Scorer struct {
	backend Backend
	pool    *Pool
}

// Option configures a Scorer.
type Option func(*scorerConfig)

type scorerConfig struct {
	workers  int
	newState func() *WorkerState
}

// WithWorkers sets the pool size. Values above MaxWorkers are capped.
func WithWorkers(n int) Option {
	return func(c *scorerConfig) {
		c.workers = n
	}
}

// WithWorkerState overrides the per-worker state constructor.
func WithWorkerState(newState func() *WorkerState) Option {
	return func(c *scorerConfig) {
		c.newState = newState
	}
}

// New creates a scorer over backend. A nil backend means the heuristic tier.
func New(backend Backend, opts ...Option) *Scorer {
	cfg := scorerConfig{newState: NewWorkerState}
	for _, opt := range opts {
		opt(&cfg)
	}
	if backend == nil {
		backend = HeuristicBackend{}
	}
	return &Scorer{
		backend: backend,
		pool:    NewPool(cfg.workers, cfg.newState),
	}
}

// Tier returns the backend tier this scorer uses.
func (s *Scorer) Tier() domain.ScorerTier {
	return s.backend.Tier()
}

// Workers returns the pool size.
func (s *Scorer) Workers() int {
	return s.pool.Size()
}

// ScoreSegments scores every segment and its sentences. The result has one
// entry per segment, in segment order. A segment whose scoring panics gets
// zero scores and Degraded set; the other segments are unaffected. When ctx
// ends early, segments not yet scored are returned degraded.
func (s *Scorer) ScoreSegments(ctx context.Context, segments []domain.Segment) []domain.SegmentScore {
	results := make([]domain.SegmentScore, len(segments))
	done := make([]bool, len(segments))

	err := s.pool.Run(ctx, len(segments), func(state *WorkerState, i int) {
		results[i] = s.scoreSegment(state, segments[i])
		done[i] = true
	})
	if err != nil {
		logger.Warn("local scoring interrupted", "err", err)
	}

	for i := range results {
		if !done[i] {
			results[i] = degraded(segments[i])
		}
	}
	return results
}

// ScoreText scores a single text outside the pool.
func (s *Scorer) ScoreText(text string) float64 {
	return s.backend.Score(NewWorkerState(), text)
}

func (s *Scorer) scoreSegment(state *WorkerState, seg domain.Segment) (result domain.SegmentScore) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("segment scoring failed, using zero score",
				"segment", seg.Index, "tier", s.backend.Tier(), "err", fmt.Sprint(r))
			result = degraded(seg)
		}
	}()

	result = domain.SegmentScore{
		SegmentIndex:   seg.Index,
		Score:          s.backend.Score(state, seg.Text),
		SentenceScores: make([]float64, len(seg.Sentences)),
	}
	for j, sent := range seg.Sentences {
		result.SentenceScores[j] = s.backend.Score(state, sent.Text)
	}
	return result
}

func degraded(seg domain.Segment) domain.SegmentScore {
	return domain.SegmentScore{
		SegmentIndex:   seg.Index,
		SentenceScores: make([]float64, len(seg.Sentences)),
		Degraded:       true,
	}
}
