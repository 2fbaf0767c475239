// Package flagged shows one flagged unit of a report with its verdict.
package flagged

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// chromeLines is the space taken by the title and footer.
const chromeLines = 4

// View is a scrollable page for a single flagged unit.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	viewport viewport.Model

	report *domain.AggregateReport
	index  int
	width  int
	height int
}

// NewView creates a new flagged unit view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		keys:     keymap.DefaultKeyMap(),
		viewport: viewport.New(80, 24-chromeLines),
		width:    80,
		height:   24,
	}
}

// SetUnit selects the flagged unit at index within report.
func (v *View) SetUnit(report *domain.AggregateReport, index int) {
	v.report = report
	v.index = index
	v.viewport.SetContent(v.body())
	v.viewport.GotoTop()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the flagged unit view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, v.keys.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewReportDetail}
		}
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the unit page.
func (v *View) View() string {
	var b strings.Builder
	title := "Flagged unit"
	if u := v.unit(); u != nil {
		title = fmt.Sprintf("Flagged unit #%d of %s", u.UnitIndex, v.report.StoredName)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(fmt.Sprintf("%s  %3.f%%",
		keymap.Help(v.keys.Up, v.keys.Down, v.keys.PageDown, v.keys.Back), v.viewport.ScrollPercent()*100)))
	return b.String()
}

func (v *View) unit() *domain.FlaggedUnit {
	if v.report == nil || v.index < 0 || v.index >= len(v.report.Flagged) {
		return nil
	}
	return &v.report.Flagged[v.index]
}

// body builds the scrollable content for the current unit.
func (v *View) body() string {
	u := v.unit()
	if u == nil {
		return v.styles.Muted.Render("No unit selected.")
	}
	s := v.styles
	kind := v.report.Kind
	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))

	var b strings.Builder
	b.WriteString(s.Subtitle.Render("Text"))
	b.WriteString("\n")
	b.WriteString(wrap.Render(u.Excerpt))
	b.WriteString("\n\n")

	verdict := u.Verdict
	fmt.Fprintf(&b, "%s %s\n", s.Subtitle.Render("Verdict:"),
		s.Class(kind, verdict.Classification).Render(string(verdict.Classification)))
	if verdict.Fallback {
		fmt.Fprintf(&b, "%s local fallback\n", s.Subtitle.Render("Source:"))
	} else {
		fmt.Fprintf(&b, "%s %.2f\n", s.Subtitle.Render("Confidence:"), verdict.Confidence)
	}
	fmt.Fprintf(&b, "%s %.2f\n", s.Subtitle.Render("Local score:"), u.Score)
	if u.UnitIndex < len(v.report.Units) {
		r := v.report.Units[u.UnitIndex]
		fmt.Fprintf(&b, "%s %.2f\n", s.Subtitle.Render("Style score:"), r.StyleScore)
		fmt.Fprintf(&b, "%s %.2f\n", s.Subtitle.Render("Best similarity:"), r.Similarity)
	}

	if verdict.Rationale != "" {
		b.WriteString("\n")
		b.WriteString(s.Subtitle.Render("Rationale"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(verdict.Rationale))
		b.WriteString("\n")
	}

	if len(verdict.References) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Subtitle.Render("References"))
		b.WriteString("\n")
		for _, ref := range verdict.References {
			fmt.Fprintf(&b, "  %-30s %5.1f%%  %s\n", ref.Source, ref.Similarity*100, s.Muted.Render(ref.EntryID))
		}
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-chromeLines, 1)
	v.viewport.SetContent(v.body())
}

// Unit returns the displayed flagged unit, or nil.
func (v *View) Unit() *domain.FlaggedUnit {
	return v.unit()
}
