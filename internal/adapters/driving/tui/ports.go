// Package tui provides an interactive terminal browser for evaluation
// reports. It is a driving adapter over the core services.
package tui

import (
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Report reads stored evaluation reports.
	Report driving.ReportService

	// Document lists stored raw documents.
	Document driving.DocumentService

	// Settings reads and edits application settings.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Report == nil {
		return ErrMissingReportService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	if p.Settings == nil {
		return ErrMissingSettingsService
	}
	return nil
}
