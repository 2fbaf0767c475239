package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

func testReport() *domain.AggregateReport {
	return &domain.AggregateReport{
		ID:             "rep-1",
		Kind:           domain.PipelinePlagiarism,
		DocumentDigest: "abc123",
		StoredName:     "essay.txt",
		Filename:       "essay.txt",
		ScorerTier:     domain.ScorerTierHeuristic,
		Percentage:     50,
		TotalUnits:     2,
		Escalated:      1,
		Counts: map[domain.Classification]int{
			domain.ClassCopied:   1,
			domain.ClassOriginal: 1,
		},
		MatchedFiles: []domain.MatchedFile{
			{Source: "thesis.pdf", AvgSimilarity: 0.93, References: 1},
		},
		Flagged: []domain.FlaggedUnit{
			{
				UnitIndex: 0,
				Excerpt:   "The quick brown fox",
				Score:     0.93,
				Verdict: domain.VerificationVerdict{
					Classification: domain.ClassCopied,
					Confidence:     0.9,
					Rationale:      "near verbatim",
				},
			},
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestServer_handleEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("evaluates inline text", func(t *testing.T) {
		eval := &mockEvaluationService{report: testReport()}
		server, err := NewServer(&Ports{Evaluation: eval})
		require.NoError(t, err)

		threshold := 0.5
		input := EvaluateInput{Text: "some text", Kind: "plagiarism", Threshold: &threshold}
		_, output, err := server.handleEvaluate(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "inline.txt", eval.last.Filename)
		assert.Equal(t, "text/plain", eval.last.MIMEType)
		assert.Equal(t, []byte("some text"), eval.last.Content)
		assert.Equal(t, domain.PipelinePlagiarism, eval.last.Kind)
		require.NotNil(t, eval.last.Threshold)
		assert.InDelta(t, 0.5, *eval.last.Threshold, 1e-9)

		assert.Equal(t, "rep-1", output.ID)
		assert.Equal(t, "plagiarism", output.Kind)
		assert.Equal(t, "heuristic", output.ScorerTier)
		assert.Equal(t, 1, output.Counts["copied"])
		require.Len(t, output.MatchedFiles, 1)
		assert.Equal(t, "thesis.pdf", output.MatchedFiles[0].Source)
		require.Len(t, output.Flagged, 1)
		assert.Equal(t, "copied", output.Flagged[0].Classification)
		assert.Equal(t, "2026-01-02T03:04:05Z", output.CreatedAt)
	})

	t.Run("keeps inline filename", func(t *testing.T) {
		eval := &mockEvaluationService{report: testReport()}
		server, err := NewServer(&Ports{Evaluation: eval})
		require.NoError(t, err)

		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Text: "x", Filename: "notes.md", Kind: "ai"})
		require.NoError(t, err)
		assert.Equal(t, "notes.md", eval.last.Filename)
		assert.Equal(t, domain.PipelineAI, eval.last.Kind)
	})

	t.Run("reads file from path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "draft.txt")
		require.NoError(t, os.WriteFile(path, []byte("file body"), 0o600))

		eval := &mockEvaluationService{report: testReport()}
		server, err := NewServer(&Ports{Evaluation: eval})
		require.NoError(t, err)

		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Path: path, Kind: "novelty"})
		require.NoError(t, err)
		assert.Equal(t, "draft.txt", eval.last.Filename)
		assert.Empty(t, eval.last.MIMEType)
		assert.Equal(t, []byte("file body"), eval.last.Content)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "big.txt")
		require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o600))

		eval := &mockEvaluationService{report: testReport()}
		server, err := NewServer(&Ports{Evaluation: eval}, WithMaxFileBytes(16))
		require.NoError(t, err)

		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Path: path, Kind: "ai"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, eval.calls)
	})

	t.Run("rejects directory and missing file", func(t *testing.T) {
		server, err := NewServer(&Ports{Evaluation: &mockEvaluationService{}})
		require.NoError(t, err)

		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Path: t.TempDir(), Kind: "ai"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		missing := filepath.Join(t.TempDir(), "nope.txt")
		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Path: missing, Kind: "ai"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		eval := &mockEvaluationService{}
		server, err := NewServer(&Ports{Evaluation: eval})
		require.NoError(t, err)

		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Text: "x", Kind: "spam"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnknownPipeline)
		assert.Contains(t, err.Error(), "invalid request")
		assert.Zero(t, eval.calls)
	})

	t.Run("requires path or text", func(t *testing.T) {
		server, err := NewServer(&Ports{Evaluation: &mockEvaluationService{}})
		require.NoError(t, err)

		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Kind: "ai"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("passes service errors through", func(t *testing.T) {
		eval := &mockEvaluationService{err: errors.New("disk full")}
		server, err := NewServer(&Ports{Evaluation: eval})
		require.NoError(t, err)

		_, _, err = server.handleEvaluate(ctx, nil, EvaluateInput{Text: "x", Kind: "ai"})
		require.Error(t, err)
		assert.Equal(t, "disk full", err.Error())
	})
}

func TestServer_handleGetReport(t *testing.T) {
	ctx := context.Background()

	t.Run("nil report service", func(t *testing.T) {
		server, err := NewServer(&Ports{Evaluation: &mockEvaluationService{}})
		require.NoError(t, err)

		_, _, err = server.handleGetReport(ctx, nil, GetReportInput{ID: "rep-1"})
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("returns report", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Evaluation: &mockEvaluationService{},
			Report:     &mockReportService{report: testReport()},
		})
		require.NoError(t, err)

		_, output, err := server.handleGetReport(ctx, nil, GetReportInput{ID: "rep-1"})
		require.NoError(t, err)
		assert.Equal(t, "rep-1", output.ID)
		assert.InDelta(t, 50.0, output.Percentage, 1e-9)
	})

	t.Run("not found is an input error", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Evaluation: &mockEvaluationService{},
			Report:     &mockReportService{err: domain.ErrNotFound},
		})
		require.NoError(t, err)

		_, _, err = server.handleGetReport(ctx, nil, GetReportInput{ID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "invalid request")
	})
}

func TestServer_handleListReports(t *testing.T) {
	ctx := context.Background()

	t.Run("empty list is not nil", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Evaluation: &mockEvaluationService{},
			Report:     &mockReportService{},
		})
		require.NoError(t, err)

		_, output, err := server.handleListReports(ctx, nil, ListReportsInput{})
		require.NoError(t, err)
		assert.NotNil(t, output.Reports)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("filters by digest", func(t *testing.T) {
		reports := &mockReportService{summaries: []domain.ReportSummary{testReport().Summary()}}
		server, err := NewServer(&Ports{Evaluation: &mockEvaluationService{}, Report: reports})
		require.NoError(t, err)

		_, output, err := server.handleListReports(ctx, nil, ListReportsInput{Digest: "abc123"})
		require.NoError(t, err)
		assert.Equal(t, "abc123", reports.digest)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "rep-1", output.Reports[0].ID)
		assert.Equal(t, "essay.txt", output.Reports[0].StoredName)
	})
}

func TestServer_handleListCorpus(t *testing.T) {
	ctx := context.Background()

	t.Run("nil corpus service", func(t *testing.T) {
		server, err := NewServer(&Ports{Evaluation: &mockEvaluationService{}})
		require.NoError(t, err)

		_, _, err = server.handleListCorpus(ctx, nil, ListCorpusInput{Kind: "ai"})
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("lists entries", func(t *testing.T) {
		corpus := &mockCorpusService{entries: []domain.CorpusEntry{
			{ID: "e1", Source: "a.txt", Texts: []string{"one", "two"}, Embeddings: [][]float32{{1}, {2}}},
			{ID: "e2", Source: "b.txt", Texts: []string{"three"}},
		}}
		server, err := NewServer(&Ports{Evaluation: &mockEvaluationService{}, Corpus: corpus})
		require.NoError(t, err)

		_, output, err := server.handleListCorpus(ctx, nil, ListCorpusInput{Kind: "plagiarism"})
		require.NoError(t, err)
		require.Equal(t, 2, output.Count)
		assert.Equal(t, 2, output.Entries[0].Texts)
		assert.True(t, output.Entries[0].HasEmbeddings)
		assert.False(t, output.Entries[1].HasEmbeddings)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		server, err := NewServer(&Ports{Evaluation: &mockEvaluationService{}, Corpus: &mockCorpusService{}})
		require.NoError(t, err)

		_, _, err = server.handleListCorpus(ctx, nil, ListCorpusInput{Kind: "spam"})
		assert.ErrorIs(t, err, domain.ErrUnknownPipeline)
	})
}
