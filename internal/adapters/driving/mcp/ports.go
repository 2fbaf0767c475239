package mcp

import (
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Evaluation runs the pipeline.
	Evaluation driving.EvaluationService

	// Report reads persisted reports.
	Report driving.ReportService

	// Corpus reads the comparison corpora.
	Corpus driving.CorpusService

	// Document reads stored raw documents.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Evaluation == nil {
		return ErrMissingEvaluationService
	}
	// Report, Corpus and Document are optional
	return nil
}
