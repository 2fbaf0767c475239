// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewReports lists stored reports.
	ViewReports
	// ViewReportDetail shows one report with its flagged units.
	ViewReportDetail
	// ViewFlagged shows a flagged unit with its verdict.
	ViewFlagged
	// ViewDocuments lists stored documents.
	ViewDocuments
	// ViewSettings shows and edits settings.
	ViewSettings
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewReports:
		return "reports"
	case ViewReportDetail:
		return "report_detail"
	case ViewFlagged:
		return "flagged"
	case ViewDocuments:
		return "documents"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// ReportsLoaded carries report summaries, newest first.
type ReportsLoaded struct {
	Reports []domain.ReportSummary
	Err     error
}

// ReportSelected asks for a report to be opened.
type ReportSelected struct {
	ID string
}

// ReportLoaded carries a full report.
type ReportLoaded struct {
	Report *domain.AggregateReport
	Err    error
}

// FlaggedSelected opens one flagged unit of a report.
type FlaggedSelected struct {
	Report *domain.AggregateReport
	Index  int
}

// DocumentsLoaded carries the stored documents.
type DocumentsLoaded struct {
	Documents []domain.StoredBlob
	Err       error
}

// DocumentSelected asks for the reports of one stored document.
type DocumentSelected struct {
	Document domain.StoredBlob
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingSaved signals a single setting was written.
type SettingSaved struct {
	Key string
	Err error
}
