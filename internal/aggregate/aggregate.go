// Package aggregate turns per-unit verdicts into a document-level report.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/veritas-cli/internal/candidates"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// Aggregation defaults.
const (
	// DefaultParaphraseWeight is the share of a paraphrased segment's length
	// counted towards the plagiarism percentage. Copied segments count fully.
	DefaultParaphraseWeight = 0.5

	DefaultMatchedFilesLimit = 6
	DefaultFlaggedLimit      = 25
	DefaultExcerptChars      = 240
)

// Aggregator computes reports. It holds no per-run state.
type Aggregator struct {
	paraphraseWeight  float64
	matchedFilesLimit int
	flaggedLimit      int
	excerptChars      int
	now               func() time.Time
	newID             func() string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithParaphraseWeight overrides DefaultParaphraseWeight. Values outside
// [0,1] are ignored.
func WithParaphraseWeight(w float64) Option {
	return func(a *Aggregator) {
		if w >= 0 && w <= 1 {
			a.paraphraseWeight = w
		}
	}
}

// WithMatchedFilesLimit caps the user-facing matched files list.
func WithMatchedFilesLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.matchedFilesLimit = n
		}
	}
}

// WithFlaggedLimit caps the flagged units list.
func WithFlaggedLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.flaggedLimit = n
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithIDGenerator overrides report ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(a *Aggregator) {
		a.newID = newID
	}
}

// New creates an aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		paraphraseWeight:  DefaultParaphraseWeight,
		matchedFilesLimit: DefaultMatchedFilesLimit,
		flaggedLimit:      DefaultFlaggedLimit,
		excerptChars:      DefaultExcerptChars,
		now:               time.Now,
		newID:             func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ParaphraseWeight returns the configured paraphrase weight.
func (a *Aggregator) ParaphraseWeight() float64 {
	return a.paraphraseWeight
}

// Input is everything one run contributes to its report.
type Input struct {
	Kind           domain.PipelineKind
	DocumentDigest string
	StoredName     string
	Filename       string
	ScorerTier     domain.ScorerTier

	// Units holds one result per unit with its verdict set.
	Units []domain.UnitResult
}

// Aggregate computes the report for in. It panics when the computed report
// breaks its own bounds, which indicates a programming error.
func (a *Aggregator) Aggregate(in Input) *domain.AggregateReport {
	units := make([]domain.UnitResult, len(in.Units))
	copy(units, in.Units)
	sort.SliceStable(units, func(i, j int) bool { return units[i].Index < units[j].Index })

	r := &domain.AggregateReport{
		ID:             a.newID(),
		Kind:           in.Kind,
		DocumentDigest: in.DocumentDigest,
		StoredName:     in.StoredName,
		Filename:       in.Filename,
		ScorerTier:     in.ScorerTier,
		TotalUnits:     len(units),
		Counts:         make(map[domain.Classification]int),
		Units:          units,
		CreatedAt:      a.now(),
	}

	for _, u := range units {
		r.Counts[u.Verdict.Classification]++
		if u.Escalated {
			r.Escalated++
		}
		if u.Verdict.Fallback {
			r.FallbackCount++
		}
	}

	r.Percentage = a.percentage(in.Kind, units, r.Counts)
	r.AllMatchedFiles = matchedFiles(units)
	r.MatchedFiles = r.AllMatchedFiles
	if len(r.MatchedFiles) > a.matchedFilesLimit {
		r.MatchedFiles = r.MatchedFiles[:a.matchedFilesLimit]
	}
	r.Flagged = a.flagged(in.Kind, units)

	a.check(r)
	return r
}

func (a *Aggregator) percentage(kind domain.PipelineKind, units []domain.UnitResult, counts map[domain.Classification]int) float64 {
	switch kind {
	case domain.PipelinePlagiarism:
		total := 0
		for _, u := range units {
			total += u.Length
		}
		if total == 0 {
			return 0
		}
		var weighted float64
		for _, u := range units {
			switch u.Verdict.Classification {
			case domain.ClassCopied:
				weighted += float64(u.Length)
			case domain.ClassParaphrased:
				weighted += float64(u.Length) * a.paraphraseWeight
			}
		}
		return clampPercent(100 * weighted / float64(total))

	case domain.PipelineAI:
		if len(units) == 0 {
			return 0
		}
		return clampPercent(100 * float64(counts[domain.ClassAI]) / float64(len(units)))

	case domain.PipelineNovelty:
		if len(units) == 0 {
			return 100
		}
		novel := len(units) - counts[domain.ClassMatched]
		return clampPercent(100 * float64(novel) / float64(len(units)))

	default:
		return 0
	}
}

// matchedFiles groups every verdict reference by source and ranks sources by
// average similarity, ties broken by name.
func matchedFiles(units []domain.UnitResult) []domain.MatchedFile {
	type acc struct {
		sum float64
		n   int
	}
	bySource := make(map[string]*acc)
	for _, u := range units {
		for _, ref := range u.Verdict.References {
			if ref.Source == "" {
				continue
			}
			s, ok := bySource[ref.Source]
			if !ok {
				s = &acc{}
				bySource[ref.Source] = s
			}
			s.sum += ref.Similarity
			s.n++
		}
	}

	out := make([]domain.MatchedFile, 0, len(bySource))
	for source, s := range bySource {
		out = append(out, domain.MatchedFile{
			Source:        source,
			AvgSimilarity: s.sum / float64(s.n),
			References:    s.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgSimilarity != out[j].AvgSimilarity {
			return out[i].AvgSimilarity > out[j].AvgSimilarity
		}
		return out[i].Source < out[j].Source
	})
	return out
}

func (a *Aggregator) flagged(kind domain.PipelineKind, units []domain.UnitResult) []domain.FlaggedUnit {
	var positive []domain.UnitResult
	for _, u := range units {
		if kind.IsPositive(u.Verdict.Classification) {
			positive = append(positive, u)
		}
	}
	sort.SliceStable(positive, func(i, j int) bool {
		if positive[i].Score != positive[j].Score {
			return positive[i].Score > positive[j].Score
		}
		return positive[i].Index < positive[j].Index
	})
	if len(positive) > a.flaggedLimit {
		positive = positive[:a.flaggedLimit]
	}

	out := make([]domain.FlaggedUnit, len(positive))
	for i, u := range positive {
		out[i] = domain.FlaggedUnit{
			UnitIndex:    u.Index,
			SegmentIndex: u.SegmentIndex,
			Excerpt:      candidates.Truncate(u.Text, a.excerptChars),
			Score:        u.Score,
			Verdict:      u.Verdict,
		}
	}
	return out
}

func (a *Aggregator) check(r *domain.AggregateReport) {
	if math.IsNaN(r.Percentage) || r.Percentage < 0 || r.Percentage > 100 {
		panic(fmt.Sprintf("aggregate: percentage %v outside [0,100]", r.Percentage))
	}
	sum := 0
	for _, n := range r.Counts {
		sum += n
	}
	if sum != r.TotalUnits {
		panic(fmt.Sprintf("aggregate: counts sum to %d, want %d", sum, r.TotalUnits))
	}
	if len(r.Flagged) > a.flaggedLimit {
		panic(fmt.Sprintf("aggregate: %d flagged units exceed limit %d", len(r.Flagged), a.flaggedLimit))
	}
	if len(r.MatchedFiles) > a.matchedFilesLimit {
		panic(fmt.Sprintf("aggregate: %d matched files exceed limit %d", len(r.MatchedFiles), a.matchedFilesLimit))
	}
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
