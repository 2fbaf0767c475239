// Package styles provides the lipgloss styles of the interactive browser.
// Colours come from the report renderer's theme so both surfaces match.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/cli/render"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// Styles contains the styles used by every view.
type Styles struct {
	theme  *render.Theme
	report *render.Styles

	// Title is the view heading.
	Title lipgloss.Style

	// Subtitle labels a section inside a view.
	Subtitle lipgloss.Style

	// Normal is unselected list text.
	Normal lipgloss.Style

	// Selected highlights the list row under the cursor.
	Selected lipgloss.Style

	// Muted is for secondary text.
	Muted lipgloss.Style

	// Help is the key hint footer.
	Help lipgloss.Style

	// Error renders failures.
	Error lipgloss.Style

	// Box frames the report headline.
	Box lipgloss.Style
}

// DefaultStyles returns styles built on render.DefaultTheme.
func DefaultStyles() *Styles {
	return NewStyles(render.DefaultTheme())
}

// NewStyles creates styles from a theme.
func NewStyles(theme *render.Theme) *Styles {
	if theme == nil {
		theme = render.DefaultTheme()
	}
	report := render.NewStyles(theme)

	return &Styles{
		theme:  theme,
		report: report,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary).
			MarginBottom(1),

		Subtitle: report.Label,

		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Muted: report.Muted,

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Positive),

		Box: report.Box,
	}
}

// Theme returns the palette behind these styles.
func (s *Styles) Theme() *render.Theme {
	return s.theme
}

// Class returns the style for a classification within a pipeline.
func (s *Styles) Class(kind domain.PipelineKind, c domain.Classification) lipgloss.Style {
	return s.report.Class(kind, c)
}
