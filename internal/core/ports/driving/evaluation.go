package driving

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// EvaluateRequest is one document evaluation.
type EvaluateRequest struct {
	// Filename is the name the document was uploaded under.
	Filename string

	// MIMEType is the content type; empty means detect from the extension.
	MIMEType string

	// Content is the raw document bytes.
	Content []byte

	// Kind selects the pipeline instance.
	Kind domain.PipelineKind

	// Threshold overrides the configured escalation threshold when non-nil.
	Threshold *float64
}

// EvaluationService runs the similarity-and-verification pipeline.
type EvaluationService interface {
	// Evaluate runs one pipeline over an uploaded document.
	// Only input errors are returned; degraded capabilities and external
	// failures are absorbed into the report.
	Evaluate(ctx context.Context, req EvaluateRequest) (*domain.AggregateReport, error)

	// ScorerTier returns the local scorer tier negotiated at startup.
	ScorerTier() domain.ScorerTier
}
