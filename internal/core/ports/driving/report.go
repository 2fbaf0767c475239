package driving

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// ReportService provides access to persisted evaluation reports.
type ReportService interface {
	// Get retrieves a report by ID.
	Get(ctx context.Context, id string) (*domain.AggregateReport, error)

	// List returns report summaries for a document digest, newest first.
	// An empty digest lists every report.
	List(ctx context.Context, digest string) ([]domain.ReportSummary, error)
}
