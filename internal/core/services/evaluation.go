package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/veritas-cli/internal/aggregate"
	"github.com/custodia-labs/veritas-cli/internal/candidates"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
	"github.com/custodia-labs/veritas-cli/internal/corpus"
	"github.com/custodia-labs/veritas-cli/internal/identity"
	"github.com/custodia-labs/veritas-cli/internal/logger"
	"github.com/custodia-labs/veritas-cli/internal/scoring"
	"github.com/custodia-labs/veritas-cli/internal/segmenter"
	"github.com/custodia-labs/veritas-cli/internal/verifier"
)

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// EvaluationComponents holds the pipeline stages an EvaluationService runs.
// Resolver and Reports are optional; without them identity falls back to
// the content digest and reports are not persisted.
type EvaluationComponents struct {
	Extractors driven.ExtractorRegistry
	Resolver   *identity.Resolver
	Segmenter  *segmenter.Segmenter
	Scorer     *scoring.Scorer
	Selector   *candidates.Selector
	Verifier   *verifier.Adapter
	Aggregator *aggregate.Aggregator
	Corpora    map[domain.PipelineKind]*corpus.Store
	Reports    driven.ReportStore
}

// EvaluationService runs one document through segmentation, local scoring,
// candidate selection, gated verification and aggregation.
type EvaluationService struct {
	c         EvaluationComponents
	settings  domain.PipelineSettings
	maxClaims int
}

// NewEvaluationService creates a new evaluation service.
func NewEvaluationService(c EvaluationComponents, settings domain.PipelineSettings) *EvaluationService {
	if c.Segmenter == nil {
		c.Segmenter = segmenter.New()
	}
	if c.Selector == nil {
		c.Selector = candidates.New()
	}
	if c.Aggregator == nil {
		c.Aggregator = aggregate.New(aggregate.WithParaphraseWeight(settings.ParaphraseWeight))
	}
	if c.Corpora == nil {
		c.Corpora = make(map[domain.PipelineKind]*corpus.Store)
	}
	return &EvaluationService{
		c:         c,
		settings:  settings,
		maxClaims: segmenter.DefaultMaxClaims,
	}
}

// ScorerTier returns the local scorer tier negotiated at startup.
func (s *EvaluationService) ScorerTier() domain.ScorerTier {
	return s.c.Scorer.Tier()
}

// unit is one scored item before gating.
type unit struct {
	segment int
	text    string
	style   float64
}

// Evaluate runs one pipeline over an uploaded document.
func (s *EvaluationService) Evaluate(ctx context.Context, req driving.EvaluateRequest) (*domain.AggregateReport, error) {
	kind := req.Kind
	if !kind.IsValid() {
		return nil, fmt.Errorf("evaluate %q: %w", kind, domain.ErrUnknownPipeline)
	}
	threshold := s.settings.EscalationThreshold
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			return nil, fmt.Errorf("threshold %.2f outside [0,1]: %w", *req.Threshold, domain.ErrInvalidInput)
		}
		threshold = *req.Threshold
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("empty document: %w", domain.ErrInvalidInput)
	}

	raw := &domain.RawDocument{Filename: req.Filename, MIMEType: req.MIMEType, Content: req.Content}
	if !s.c.Extractors.Supports(raw) {
		return nil, fmt.Errorf("evaluate %q: %w", req.Filename, domain.ErrUnsupportedFormat)
	}

	if s.settings.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.RequestTimeout)
		defer cancel()
	}

	text := s.c.Extractors.Extract(ctx, raw)
	if len([]rune(text)) < max(s.settings.MinContentChars, 1) {
		return nil, fmt.Errorf("evaluate %q: %d characters extracted: %w",
			req.Filename, len([]rune(text)), domain.ErrInsufficientContent)
	}

	id := s.resolve(ctx, req)
	logger.Section("evaluate " + string(kind))
	logger.Debug("document %s stored as %s (duplicate=%t)", id.Digest, id.StoredName, id.Duplicate)

	segments := s.c.Segmenter.Segment(text)
	scores := s.c.Scorer.ScoreSegments(ctx, segments)
	units := s.units(kind, segments, scores)
	logger.Debug("%d segments, %d %s units", len(segments), len(units), kind.Unit())

	shortlists := s.shortlist(ctx, kind, id.StoredName, units)

	results := make([]domain.UnitResult, len(units))
	var reqs []domain.VerifyRequest
	for i, u := range units {
		score := u.style
		var similarity float64
		if len(shortlists[i]) > 0 {
			similarity = shortlists[i][0].Similarity
		}
		if kind.UsesCorpusSimilarity() {
			score = similarity
		}
		results[i] = domain.UnitResult{
			Index:        i,
			SegmentIndex: u.segment,
			Text:         u.text,
			Length:       len([]rune(u.text)),
			Score:        score,
			StyleScore:   u.style,
			Similarity:   similarity,
		}
		if score >= threshold {
			results[i].Escalated = true
			reqs = append(reqs, domain.VerifyRequest{
				UnitIndex:  i,
				Text:       u.text,
				Score:      score,
				Candidates: shortlists[i],
			})
			continue
		}
		results[i].Verdict = verifier.Fallback(kind, score, verifier.ReasonBelowThreshold, shortlists[i])
	}

	verdicts := s.verify(ctx, kind, reqs)
	for i, r := range reqs {
		results[r.UnitIndex].Verdict = verdicts[i]
	}

	report := s.c.Aggregator.Aggregate(aggregate.Input{
		Kind:           kind,
		DocumentDigest: id.Digest,
		StoredName:     id.StoredName,
		Filename:       req.Filename,
		ScorerTier:     s.c.Scorer.Tier(),
		Units:          results,
	})
	logger.Info("%s: %.1f%% over %d units (%d escalated, %d fallback)",
		kind, report.Percentage, report.TotalUnits, report.Escalated, report.FallbackCount)

	persistCtx := context.WithoutCancel(ctx)
	s.saveReport(persistCtx, report)
	if !id.Duplicate {
		s.grow(persistCtx, kind, id.StoredName, segments, results)
	}
	return report, nil
}

// resolve stores the raw bytes. Failures are logged and the run continues
// under the content digest.
func (s *EvaluationService) resolve(ctx context.Context, req driving.EvaluateRequest) *domain.Identity {
	fallback := &domain.Identity{Digest: identity.Digest(req.Content), StoredName: req.Filename}
	if s.c.Resolver == nil {
		return fallback
	}
	id, err := s.c.Resolver.Resolve(ctx, req.Filename, req.MIMEType, req.Content)
	if err != nil {
		logger.Warn("raw document not stored", "file", req.Filename, "err", err)
	}
	if id == nil {
		return fallback
	}
	return id
}

// units maps segments and their scores to the pipeline's unit kind.
func (s *EvaluationService) units(kind domain.PipelineKind, segments []domain.Segment, scores []domain.SegmentScore) []unit {
	sentenceScore := func(seg, sent int) float64 {
		if seg < len(scores) && sent < len(scores[seg].SentenceScores) {
			return scores[seg].SentenceScores[sent]
		}
		if seg < len(scores) {
			return scores[seg].Score
		}
		return 0
	}

	var out []unit
	switch kind.Unit() {
	case domain.UnitSentence:
		for _, seg := range segments {
			for _, sent := range seg.Sentences {
				out = append(out, unit{
					segment: seg.Index,
					text:    sent.Text,
					style:   sentenceScore(seg.Index, sent.Index),
				})
			}
		}
	case domain.UnitClaim:
		for _, c := range segmenter.ExtractClaims(segments, s.maxClaims) {
			out = append(out, unit{
				segment: c.SegmentIndex,
				text:    c.Text,
				style:   sentenceScore(c.SegmentIndex, c.SentenceIndex),
			})
		}
	default:
		for i, seg := range segments {
			var style float64
			if i < len(scores) {
				style = scores[i].Score
			}
			out = append(out, unit{segment: seg.Index, text: seg.Text, style: style})
		}
	}
	return out
}

// shortlist selects candidates for every unit against the corpus snapshot
// taken now. Candidates from the document's own stored name are dropped.
func (s *EvaluationService) shortlist(ctx context.Context, kind domain.PipelineKind, self string, units []unit) [][]domain.Candidate {
	out := make([][]domain.Candidate, len(units))
	store := s.c.Corpora[kind]
	if !kind.UsesCorpusSimilarity() || store == nil || len(units) == 0 {
		return out
	}
	snap := store.Snapshot()
	if snap.Len() == 0 {
		return out
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.text
	}
	var embeddings [][]float32
	if snap.Index() != nil && store.HasEmbedder() {
		embeddings = embedAll(ctx, store.Embedder(), texts)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.c.Scorer.Workers(), 1))
	for i := range units {
		g.Go(func() error {
			var emb []float32
			if embeddings != nil {
				emb = embeddings[i]
			}
			out[i] = withoutSource(s.c.Selector.Select(gctx, snap, texts[i], emb), self)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// verify sends the escalated units to the verifier, or falls back for all
// of them when no verifier is configured.
func (s *EvaluationService) verify(ctx context.Context, kind domain.PipelineKind, reqs []domain.VerifyRequest) []domain.VerificationVerdict {
	if len(reqs) == 0 {
		return nil
	}
	if s.c.Verifier != nil {
		return s.c.Verifier.VerifyAll(ctx, kind, reqs)
	}
	out := make([]domain.VerificationVerdict, len(reqs))
	for i, r := range reqs {
		out[i] = verifier.Fallback(kind, r.Score, verifier.ReasonUnavailable, r.Candidates)
	}
	return out
}

func (s *EvaluationService) saveReport(ctx context.Context, report *domain.AggregateReport) {
	if s.c.Reports == nil {
		return
	}
	if err := s.c.Reports.SaveReport(ctx, report); err != nil {
		logger.Warn("report not persisted", "id", report.ID, "err", err)
	}
}

// grow appends the run's novel material to the pipeline's corpus. For the
// AI pipeline every segment is kept; otherwise only units with a negative
// classification are.
func (s *EvaluationService) grow(
	ctx context.Context,
	kind domain.PipelineKind,
	source string,
	segments []domain.Segment,
	results []domain.UnitResult,
) {
	store := s.c.Corpora[kind]
	if store == nil {
		return
	}

	var texts []string
	if kind == domain.PipelineAI {
		for _, seg := range segments {
			texts = append(texts, seg.Text)
		}
	} else {
		for _, r := range results {
			c := r.Verdict.Classification
			if kind.IsPositive(c) || c == domain.ClassUncertain {
				continue
			}
			texts = append(texts, r.Text)
		}
	}
	if len(texts) == 0 {
		return
	}

	entry, err := store.Append(ctx, source, texts)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidInput) {
			logger.Warn("corpus not updated", "kind", kind, "source", source, "err", err)
		}
		return
	}
	logger.Debug("corpus %s: appended %d texts from %s", kind, len(entry.Texts), source)
}

// embedAll embeds every unit text. Adapters split the call into provider
// batches. Any failure returns nil so selection degrades to the lexical path.
func embedAll(ctx context.Context, embedder driven.EmbeddingService, texts []string) [][]float32 {
	vecs, err := embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vecs) != len(texts) {
		err = fmt.Errorf("got %d vectors for %d texts", len(vecs), len(texts))
	}
	if err != nil {
		logger.Warn("unit embeddings unavailable, using lexical candidates", "err", err)
		return nil
	}
	return vecs
}

func withoutSource(cands []domain.Candidate, source string) []domain.Candidate {
	out := cands[:0:0]
	for _, c := range cands {
		if c.Source != source {
			out = append(out, c)
		}
	}
	return out
}

