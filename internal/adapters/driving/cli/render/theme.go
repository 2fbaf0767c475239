// Package render formats evaluation reports for the terminal.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// Theme defines the colour palette used for reports.
type Theme struct {
	// Primary is the heading colour.
	Primary lipgloss.Color

	// Secondary is the colour of section labels.
	Secondary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Negative marks classes that need no attention.
	Negative lipgloss.Color

	// Uncertain marks undecided units.
	Uncertain lipgloss.Color

	// Positive marks suspicious units.
	Positive lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Negative:  lipgloss.Color("#A6E3A1"), // Green
		Uncertain: lipgloss.Color("#F9E2AF"), // Yellow
		Positive:  lipgloss.Color("#F38BA8"), // Red
		Border:    lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for the report header.
	Title lipgloss.Style

	// Label style for section labels.
	Label lipgloss.Style

	// Muted style for secondary text.
	Muted lipgloss.Style

	// Negative, Uncertain and Positive colour classifications.
	Negative  lipgloss.Style
	Uncertain lipgloss.Style
	Positive  lipgloss.Style

	// Box wraps the percentage headline.
	Box lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Negative: lipgloss.NewStyle().
			Foreground(theme.Negative),

		Uncertain: lipgloss.NewStyle().
			Foreground(theme.Uncertain),

		Positive: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Positive),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// Plain returns styles that render text unchanged.
func Plain() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		theme:     DefaultTheme(),
		Title:     plain,
		Label:     plain,
		Muted:     plain,
		Negative:  plain,
		Uncertain: plain,
		Positive:  plain,
		Box:       plain,
	}
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Class returns the style for a classification within a pipeline.
func (s *Styles) Class(kind domain.PipelineKind, c domain.Classification) lipgloss.Style {
	switch {
	case kind.IsPositive(c):
		return s.Positive
	case c == domain.ClassUncertain:
		return s.Uncertain
	default:
		return s.Negative
	}
}
