package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
	"github.com/custodia-labs/veritas-cli/internal/corpus"
	"github.com/custodia-labs/veritas-cli/internal/identity"
	"github.com/custodia-labs/veritas-cli/internal/normalisers"
	"github.com/custodia-labs/veritas-cli/internal/scoring"
	"github.com/custodia-labs/veritas-cli/internal/verifier"
)

// lengthBackend scores a text by its length so different sentences get
// different, deterministic scores.
type lengthBackend struct{}

func (lengthBackend) Tier() domain.ScorerTier { return domain.ScorerTierHeuristic }

func (lengthBackend) Score(_ *scoring.WorkerState, text string) float64 {
	return float64(len(text)%100) / 100
}

// fixedBackend scores every text the same.
type fixedBackend struct{ score float64 }

func (fixedBackend) Tier() domain.ScorerTier { return domain.ScorerTierHeuristic }

func (b fixedBackend) Score(_ *scoring.WorkerState, _ string) float64 { return b.score }

// stubLLM answers every chat with respond.
type stubLLM struct {
	respond func(ctx context.Context) (string, error)
}

func (s *stubLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return "", errors.New("not used")
}

func (s *stubLLM) Chat(ctx context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return s.respond(ctx)
}

func (s *stubLLM) ModelName() string            { return "stub" }
func (s *stubLLM) Ping(_ context.Context) error { return nil }
func (s *stubLLM) Close() error                 { return nil }

type mapPrompts map[string]string

func (p mapPrompts) Load(name string) (string, error) {
	if s, ok := p[name]; ok {
		return s, nil
	}
	return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
}

func (p mapPrompts) Reload() {}

func testPrompts() mapPrompts {
	return mapPrompts{
		driven.PromptVerifySystem:     "Answer in JSON.",
		driven.PromptVerifyPlagiarism: "Unit: %s\nScore: %.2f\n%s",
		driven.PromptVerifyAI:         "Sentence: %s\nScore: %.2f\n%s",
		driven.PromptVerifyNovelty:    "Claim: %s\nScore: %.2f\n%s",
	}
}

// memReports is an in-memory ReportStore.
type memReports struct {
	mu      sync.Mutex
	reports []*domain.AggregateReport
	err     error
}

func (m *memReports) SaveReport(_ context.Context, r *domain.AggregateReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, r)
	return nil
}

func (m *memReports) GetReport(_ context.Context, id string) (*domain.AggregateReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memReports) ListReports(_ context.Context, digest string) ([]domain.ReportSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ReportSummary
	for i := len(m.reports) - 1; i >= 0; i-- {
		if digest == "" || m.reports[i].DocumentDigest == digest {
			out = append(out, m.reports[i].Summary())
		}
	}
	return out, nil
}

// memBlobs is an in-memory BlobStore.
type memBlobs struct {
	mu      sync.Mutex
	blobs   []domain.StoredBlob
	content map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{content: make(map[string][]byte)}
}

func (m *memBlobs) Put(_ context.Context, blob domain.StoredBlob, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.content[blob.Name]; ok {
		return domain.ErrAlreadyExists
	}
	m.blobs = append(m.blobs, blob)
	m.content[blob.Name] = content
	return nil
}

func (m *memBlobs) Get(_ context.Context, name string) (*domain.StoredBlob, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.blobs {
		if m.blobs[i].Name == name {
			b := m.blobs[i]
			return &b, m.content[name], nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

func (m *memBlobs) FindByDigest(_ context.Context, digest string) (*domain.StoredBlob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.blobs {
		if m.blobs[i].Digest == digest {
			b := m.blobs[i]
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memBlobs) Exists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.content[name]
	return ok, nil
}

func (m *memBlobs) List(_ context.Context) ([]domain.StoredBlob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.StoredBlob(nil), m.blobs...), nil
}

const essay = `Photosynthesis converts light energy into chemical energy inside the chloroplasts of green plants.

Researchers measured the rate of oxygen release under several different light intensities during the spring.

The results suggest that intensity beyond a certain level produces no further increase in the reaction rate.`

func testCorpora() map[domain.PipelineKind]*corpus.Store {
	out := make(map[domain.PipelineKind]*corpus.Store)
	for _, k := range domain.AllPipelineKinds() {
		out[k] = corpus.NewStore(k)
	}
	return out
}

func testSettings() domain.PipelineSettings {
	s := domain.DefaultAppSettings().Pipeline
	s.RequestTimeout = 10 * time.Second
	return s
}

type fixture struct {
	svc     *EvaluationService
	corpora map[domain.PipelineKind]*corpus.Store
	reports *memReports
	blobs   *memBlobs
}

func newFixture(backend scoring.Backend, v *verifier.Adapter, settings domain.PipelineSettings) *fixture {
	f := &fixture{
		corpora: testCorpora(),
		reports: &memReports{},
		blobs:   newMemBlobs(),
	}
	f.svc = NewEvaluationService(EvaluationComponents{
		Extractors: normalisers.NewDefaultRegistry(),
		Resolver:   identity.New(f.blobs),
		Scorer:     scoring.New(backend, scoring.WithWorkers(2)),
		Verifier:   v,
		Corpora:    f.corpora,
		Reports:    f.reports,
	}, settings)
	return f
}

func evaluateRequest(kind domain.PipelineKind, filename, text string) driving.EvaluateRequest {
	return driving.EvaluateRequest{
		Filename: filename,
		Content:  []byte(text),
		Kind:     kind,
	}
}

func TestEvaluate_InputErrors(t *testing.T) {
	f := newFixture(fixedBackend{}, nil, testSettings())
	ctx := context.Background()
	bad := 1.5

	tests := []struct {
		name string
		req  driving.EvaluateRequest
		want error
	}{
		{"unknown kind", evaluateRequest("style", "a.txt", essay), domain.ErrUnknownPipeline},
		{"empty content", evaluateRequest(domain.PipelinePlagiarism, "a.txt", ""), domain.ErrInvalidInput},
		{"unsupported format", evaluateRequest(domain.PipelinePlagiarism, "a.xyz", essay), domain.ErrUnsupportedFormat},
		{"too short", evaluateRequest(domain.PipelinePlagiarism, "a.txt", "Too short."), domain.ErrInsufficientContent},
		{"whitespace only", evaluateRequest(domain.PipelinePlagiarism, "a.txt", "   \n\n  "), domain.ErrInsufficientContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := f.svc.Evaluate(ctx, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, domain.IsInputError(err))
			assert.Nil(t, report)
		})
	}

	t.Run("threshold outside range", func(t *testing.T) {
		req := evaluateRequest(domain.PipelinePlagiarism, "a.txt", essay)
		req.Threshold = &bad
		_, err := f.svc.Evaluate(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	assert.Empty(t, f.blobs.blobs, "rejected uploads are never stored")
	assert.Empty(t, f.reports.reports)
}

func TestEvaluate_ZeroOverlap(t *testing.T) {
	tests := []struct {
		kind domain.PipelineKind
		want float64
	}{
		{domain.PipelinePlagiarism, 0},
		{domain.PipelineNovelty, 100},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := newFixture(fixedBackend{score: 0.1}, nil, testSettings())

			report, err := f.svc.Evaluate(context.Background(), evaluateRequest(tt.kind, "essay.txt", essay))
			require.NoError(t, err)

			assert.InDelta(t, tt.want, report.Percentage, 1e-9)
			assert.NotZero(t, report.TotalUnits)
			assert.Zero(t, report.Escalated)
			assert.Empty(t, report.Flagged)
			assert.Empty(t, report.MatchedFiles)
			assert.Equal(t, domain.ScorerTierHeuristic, report.ScorerTier)
			assert.Equal(t, identity.Digest([]byte(essay)), report.DocumentDigest)
		})
	}
}

func TestEvaluate_AIZeroScores(t *testing.T) {
	f := newFixture(fixedBackend{score: 0.1}, nil, testSettings())

	report, err := f.svc.Evaluate(context.Background(), evaluateRequest(domain.PipelineAI, "essay.txt", essay))
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalUnits, "one unit per sentence")
	assert.Zero(t, report.Percentage)
	assert.Equal(t, 3, report.Counts[domain.ClassHuman])
}

func TestEvaluate_IdenticalSegment(t *testing.T) {
	const copied = "The industrial revolution transformed the economic structure of Britain within a single century."

	for _, withVerifier := range []bool{true, false} {
		t.Run(fmt.Sprintf("verifier=%t", withVerifier), func(t *testing.T) {
			var entryID string
			llm := &stubLLM{respond: func(context.Context) (string, error) {
				return fmt.Sprintf(`{"classification":"copied","confidence":0.95,`+
					`"rationale":"verbatim","references":[{"id":%q}]}`, entryID), nil
			}}
			var v *verifier.Adapter
			if withVerifier {
				v = verifier.New(llm, testPrompts(), verifier.WithRateLimit(0))
			}
			f := newFixture(fixedBackend{score: 0.2}, v, testSettings())

			entry, err := f.corpora[domain.PipelinePlagiarism].Append(context.Background(), "thesis.pdf", []string{copied})
			require.NoError(t, err)
			entryID = entry.ID

			report, err := f.svc.Evaluate(context.Background(),
				evaluateRequest(domain.PipelinePlagiarism, "essay.txt", copied))
			require.NoError(t, err)

			require.Len(t, report.Units, 1)
			u := report.Units[0]
			assert.InDelta(t, 1.0, u.Similarity, 0.01)
			assert.True(t, u.Escalated)
			assert.Equal(t, domain.ClassCopied, u.Verdict.Classification)
			assert.Equal(t, !withVerifier, u.Verdict.Fallback)

			require.NotEmpty(t, report.MatchedFiles)
			assert.Equal(t, "thesis.pdf", report.MatchedFiles[0].Source)
			assert.GreaterOrEqual(t, report.MatchedFiles[0].AvgSimilarity, 0.9)
			assert.InDelta(t, 100, report.Percentage, 1e-9)
			require.Len(t, report.Flagged, 1)
		})
	}
}

func TestEvaluate_GateScoreFollowsPipeline(t *testing.T) {
	tests := []struct {
		kind          domain.PipelineKind
		wantScore     float64
		wantEscalated bool
	}{
		{domain.PipelinePlagiarism, 0, false},
		{domain.PipelineNovelty, 0, false},
		{domain.PipelineAI, 0.9, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := newFixture(fixedBackend{score: 0.9}, nil, testSettings())

			report, err := f.svc.Evaluate(context.Background(), evaluateRequest(tt.kind, "essay.txt", essay))
			require.NoError(t, err)

			require.NotEmpty(t, report.Units)
			for _, u := range report.Units {
				assert.InDelta(t, 0.9, u.StyleScore, 1e-9)
				assert.InDelta(t, tt.wantScore, u.Score, 1e-9)
				assert.Equal(t, tt.wantEscalated, u.Escalated)
			}
		})
	}
}

func TestEvaluate_EscalationMonotonic(t *testing.T) {
	ctx := context.Background()
	var prev map[int]bool

	for _, threshold := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1} {
		f := newFixture(lengthBackend{}, nil, testSettings())
		req := evaluateRequest(domain.PipelineAI, "essay.txt", essay)
		req.Threshold = &threshold

		report, err := f.svc.Evaluate(ctx, req)
		require.NoError(t, err)

		escalated := make(map[int]bool)
		for _, u := range report.Units {
			assert.Equal(t, u.Score >= threshold, u.Escalated, "unit %d at threshold %.1f", u.Index, threshold)
			if u.Escalated {
				escalated[u.Index] = true
			}
		}
		for idx := range escalated {
			if prev != nil {
				assert.True(t, prev[idx], "raising the threshold never escalates a new unit")
			}
		}
		prev = escalated
	}
}

func TestEvaluate_VerifierFailureFallsBack(t *testing.T) {
	llm := &stubLLM{respond: func(context.Context) (string, error) {
		return "", errors.New("connection refused")
	}}
	v := verifier.New(llm, testPrompts(), verifier.WithRateLimit(0))
	f := newFixture(lengthBackend{}, v, testSettings())

	report, err := f.svc.Evaluate(context.Background(), evaluateRequest(domain.PipelineAI, "essay.txt", essay))
	require.NoError(t, err)

	require.Len(t, report.Units, report.TotalUnits)
	assert.Equal(t, report.TotalUnits, report.FallbackCount)
	for _, u := range report.Units {
		assert.True(t, u.Verdict.Fallback)
		assert.Zero(t, u.Verdict.Confidence)
		assert.True(t, domain.PipelineAI.Accepts(u.Verdict.Classification))
		if !u.Escalated {
			assert.False(t, domain.PipelineAI.IsPositive(u.Verdict.Classification),
				"below-threshold units are never positive")
		}
	}
}

func TestEvaluate_DeadlineMidVerification(t *testing.T) {
	llm := &stubLLM{respond: func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	v := verifier.New(llm, testPrompts(), verifier.WithRateLimit(0), verifier.WithConcurrency(2))
	settings := testSettings()
	settings.RequestTimeout = 100 * time.Millisecond
	f := newFixture(fixedBackend{score: 0.9}, v, settings)

	start := time.Now()
	report, err := f.svc.Evaluate(context.Background(), evaluateRequest(domain.PipelineAI, "essay.txt", essay))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, 3, report.TotalUnits)
	assert.Equal(t, 3, report.Escalated)
	for _, u := range report.Units {
		assert.True(t, u.Verdict.Fallback)
		assert.Contains(t, u.Verdict.Rationale, verifier.ReasonDeadline)
		assert.Equal(t, domain.ClassAI, u.Verdict.Classification)
	}
	assert.Len(t, f.reports.reports, 1, "the report is persisted after the deadline")
}

func TestEvaluate_GrowsCorpusOnce(t *testing.T) {
	f := newFixture(fixedBackend{score: 0.1}, nil, testSettings())
	ctx := context.Background()
	store := f.corpora[domain.PipelinePlagiarism]

	first, err := f.svc.Evaluate(ctx, evaluateRequest(domain.PipelinePlagiarism, "essay.txt", essay))
	require.NoError(t, err)
	require.Equal(t, 1, store.Snapshot().Len())
	assert.Equal(t, "essay.txt", store.Snapshot().Entry(0).Source)

	// The same bytes again: a duplicate, whose own corpus entry is not a match.
	second, err := f.svc.Evaluate(ctx, evaluateRequest(domain.PipelinePlagiarism, "copy.txt", essay))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Snapshot().Len())
	assert.Equal(t, "essay.txt", second.StoredName)
	assert.Zero(t, second.Percentage)
	assert.Empty(t, second.MatchedFiles)

	assert.Equal(t, first.DocumentDigest, second.DocumentDigest)
	assert.Len(t, f.blobs.blobs, 1)
	assert.Len(t, f.reports.reports, 2)
}

func TestEvaluate_SecondDocumentMatchesFirst(t *testing.T) {
	f := newFixture(fixedBackend{score: 0.1}, nil, testSettings())
	ctx := context.Background()

	_, err := f.svc.Evaluate(ctx, evaluateRequest(domain.PipelinePlagiarism, "essay.txt", essay))
	require.NoError(t, err)

	edited := essay + "\n\nA closing remark was added by the second author before submission."
	report, err := f.svc.Evaluate(ctx, evaluateRequest(domain.PipelinePlagiarism, "essay.txt", edited))
	require.NoError(t, err)

	assert.Equal(t, "essay-v1.txt", report.StoredName)
	require.NotEmpty(t, report.MatchedFiles)
	assert.Equal(t, "essay.txt", report.MatchedFiles[0].Source)
	assert.Positive(t, report.Percentage)
}

func TestEvaluate_ReportStoreFailureIsAbsorbed(t *testing.T) {
	f := newFixture(fixedBackend{score: 0.1}, nil, testSettings())
	f.reports.err = errors.New("disk full")

	report, err := f.svc.Evaluate(context.Background(), evaluateRequest(domain.PipelineNovelty, "essay.txt", essay))
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
}

func TestEvaluate_UnitsFollowPipeline(t *testing.T) {
	question := "\n\nIs the effect the same for every plant species that was studied?"
	tests := []struct {
		kind domain.PipelineKind
		want int
	}{
		{domain.PipelinePlagiarism, 2},
		{domain.PipelineAI, 4},
		{domain.PipelineNovelty, 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := newFixture(fixedBackend{score: 0.1}, nil, testSettings())
			report, err := f.svc.Evaluate(context.Background(), evaluateRequest(tt.kind, "essay.txt", essay+question))
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.TotalUnits)
			for i, u := range report.Units {
				assert.Equal(t, i, u.Index)
				assert.NotEmpty(t, strings.TrimSpace(u.Text))
			}
		})
	}
}

func TestEvaluationService_ScorerTier(t *testing.T) {
	f := newFixture(nil, nil, testSettings())
	assert.Equal(t, domain.ScorerTierHeuristic, f.svc.ScorerTier())
}
