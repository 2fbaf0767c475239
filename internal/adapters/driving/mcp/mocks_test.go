package mcp

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
)

// mockEvaluationService is a mock implementation of driving.EvaluationService.
type mockEvaluationService struct {
	report *domain.AggregateReport
	err    error
	last   driving.EvaluateRequest
	calls  int
}

func (m *mockEvaluationService) Evaluate(_ context.Context, req driving.EvaluateRequest) (*domain.AggregateReport, error) {
	m.last = req
	m.calls++
	return m.report, m.err
}

func (m *mockEvaluationService) ScorerTier() domain.ScorerTier {
	return domain.ScorerTierHeuristic
}

// mockReportService is a mock implementation of driving.ReportService.
type mockReportService struct {
	report    *domain.AggregateReport
	summaries []domain.ReportSummary
	err       error
	digest    string
}

func (m *mockReportService) Get(_ context.Context, _ string) (*domain.AggregateReport, error) {
	return m.report, m.err
}

func (m *mockReportService) List(_ context.Context, digest string) ([]domain.ReportSummary, error) {
	m.digest = digest
	return m.summaries, m.err
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	entries []domain.CorpusEntry
	err     error
}

func (m *mockCorpusService) List(_ context.Context, _ domain.PipelineKind) ([]domain.CorpusEntry, error) {
	return m.entries, m.err
}

func (m *mockCorpusService) Add(
	_ context.Context,
	_ domain.PipelineKind,
	_ *domain.RawDocument,
) (*domain.CorpusEntry, error) {
	return nil, m.err
}

func (m *mockCorpusService) Rebuild(_ context.Context, _ domain.PipelineKind) (int, error) {
	return 0, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	blobs []domain.StoredBlob
	err   error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.StoredBlob, error) {
	return m.blobs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.StoredBlob, []byte, error) {
	return nil, nil, m.err
}
