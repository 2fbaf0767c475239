// Package candidates shortlists corpus entries for one unit of text.
//
// Two paths feed the shortlist. The vector path queries the snapshot's
// similarity index when both an index and a query embedding exist. The
// lexical path always runs and compares character trigram profiles against
// the most recent corpus texts. Results are merged per corpus entry.
package candidates

import (
	"context"
	"sort"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/corpus"
	"github.com/custodia-labs/veritas-cli/internal/logger"
	"github.com/custodia-labs/veritas-cli/internal/similarity"
)

// Selection defaults.
const (
	DefaultK              = 10
	DefaultCosineFloor    = 0.55
	DefaultTopN           = 8
	DefaultLexicalFloor   = 0.18
	DefaultMaxComparisons = 2000
	DefaultPreviewChars   = 300
)

// Candidate methods.
const (
	MethodVector  = "vector"
	MethodLexical = "lexical"
)

// ctxCheckInterval is how many lexical comparisons run between context checks.
const ctxCheckInterval = 256

// Selector picks candidate corpus entries. It is stateless and safe for
// concurrent use.
type Selector struct {
	k              int
	cosineFloor    float64
	topN           int
	lexicalFloor   float64
	maxComparisons int
	previewChars   int
}

// Option configures a Selector.
type Option func(*Selector)

// WithK sets how many nearest vectors are requested.
func WithK(k int) Option {
	return func(s *Selector) {
		if k > 0 {
			s.k = k
		}
	}
}

// WithCosineFloor sets the minimum vector similarity kept.
func WithCosineFloor(f float64) Option {
	return func(s *Selector) {
		s.cosineFloor = f
	}
}

// WithTopN caps the number of candidates returned.
func WithTopN(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithLexicalFloor sets the minimum trigram overlap kept.
func WithLexicalFloor(f float64) Option {
	return func(s *Selector) {
		s.lexicalFloor = f
	}
}

// WithMaxComparisons bounds the lexical path to the n most recent texts.
func WithMaxComparisons(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.maxComparisons = n
		}
	}
}

// WithPreviewChars bounds candidate previews.
func WithPreviewChars(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.previewChars = n
		}
	}
}

// New creates a selector with the default bounds.
func New(opts ...Option) *Selector {
	s := &Selector{
		k:              DefaultK,
		cosineFloor:    DefaultCosineFloor,
		topN:           DefaultTopN,
		lexicalFloor:   DefaultLexicalFloor,
		maxComparisons: DefaultMaxComparisons,
		previewChars:   DefaultPreviewChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// match is the best text of one entry seen so far.
type match struct {
	entry      int
	text       *corpus.Text
	similarity float64
	method     string
}

// Select returns at most TopN candidates for text, sorted by similarity
// descending with ties broken by entry ID. embedding may be nil. Select only
// reads snap. A context that ends part way returns what was found so far.
func (s *Selector) Select(
	ctx context.Context,
	snap *corpus.Snapshot,
	text string,
	embedding []float32,
) []domain.Candidate {
	if snap == nil || snap.Len() == 0 || text == "" {
		return nil
	}

	best := make(map[int]*match)
	keep := func(t *corpus.Text, sim float64, method string) {
		if cur, ok := best[t.Entry]; ok && cur.similarity >= sim {
			return
		}
		best[t.Entry] = &match{entry: t.Entry, text: t, similarity: sim, method: method}
	}

	s.vectorPath(ctx, snap, embedding, keep)
	s.lexicalPath(ctx, snap, text, keep)

	out := make([]domain.Candidate, 0, len(best))
	for _, m := range best {
		entry := snap.Entry(m.entry)
		out = append(out, domain.Candidate{
			EntryID:    entry.ID,
			Source:     entry.Source,
			Similarity: m.similarity,
			Preview:    Truncate(m.text.Content, s.previewChars),
			Method:     m.method,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].EntryID < out[j].EntryID
	})
	if len(out) > s.topN {
		out = out[:s.topN]
	}
	return out
}

func (s *Selector) vectorPath(
	ctx context.Context,
	snap *corpus.Snapshot,
	embedding []float32,
	keep func(*corpus.Text, float64, string),
) {
	idx := snap.Index()
	if idx == nil || len(embedding) == 0 {
		return
	}
	hits, err := idx.Search(ctx, embedding, s.k)
	if err != nil {
		logger.Debug("vector candidate search failed: %v", err)
		return
	}
	for _, hit := range hits {
		if hit.Similarity < s.cosineFloor {
			continue
		}
		if t, ok := snap.Resolve(hit.ID); ok {
			keep(t, clamp01(hit.Similarity), MethodVector)
		}
	}
}

func (s *Selector) lexicalPath(
	ctx context.Context,
	snap *corpus.Snapshot,
	text string,
	keep func(*corpus.Text, float64, string),
) {
	query := similarity.NewProfile(text)
	if query.Size() == 0 {
		return
	}

	texts := snap.Texts()
	if len(texts) > s.maxComparisons {
		texts = texts[:s.maxComparisons]
	}

	type scored struct {
		text *corpus.Text
		sim  float64
	}
	var hits []scored
	for i := range texts {
		if i%ctxCheckInterval == 0 && ctx.Err() != nil {
			break
		}
		t := &texts[i]
		sim := similarity.Dice(query, t.Profile)
		if sim >= s.lexicalFloor {
			hits = append(hits, scored{text: t, sim: sim})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].sim > hits[j].sim })
	if len(hits) > s.topN {
		hits = hits[:s.topN]
	}
	for _, h := range hits {
		keep(h.text, h.sim, MethodLexical)
	}
}

// Truncate returns text cut to at most n runes, with "..." appended when cut.
func Truncate(text string, n int) string {
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
