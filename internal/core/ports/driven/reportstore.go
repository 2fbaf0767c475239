package driven

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// ReportStore persists aggregate reports as opaque records.
type ReportStore interface {
	// SaveReport stores a report keyed by its ID and document digest.
	SaveReport(ctx context.Context, report *domain.AggregateReport) error

	// GetReport retrieves a report by ID.
	// Returns domain.ErrNotFound if the report does not exist.
	GetReport(ctx context.Context, id string) (*domain.AggregateReport, error)

	// ListReports returns report summaries, newest first.
	// An empty digest lists every report.
	ListReports(ctx context.Context, digest string) ([]domain.ReportSummary, error)
}
