// Package reportdetail shows one evaluation report and lets the user pick
// a flagged unit to inspect.
package reportdetail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/cli/render"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// excerptWidth caps flagged excerpts in the list.
const excerptWidth = 60

// View renders a report header followed by its flagged units.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	report   *domain.AggregateReport
	selected int
	width    int
	height   int
}

// NewView creates a new report detail view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, keys: keymap.DefaultKeyMap(), width: 80, height: 24}
}

// SetReport replaces the displayed report.
func (v *View) SetReport(r *domain.AggregateReport) {
	v.report = r
	v.selected = 0
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the report detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	switch {
	case key.Matches(km, v.keys.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(km, v.keys.Down):
		if v.report != nil && v.selected < len(v.report.Flagged)-1 {
			v.selected++
		}
	case key.Matches(km, v.keys.Select):
		if v.report != nil && v.selected < len(v.report.Flagged) {
			report, index := v.report, v.selected
			return v, func() tea.Msg {
				return messages.FlaggedSelected{Report: report, Index: index}
			}
		}
	case key.Matches(km, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewReports}
		}
	}
	return v, nil
}

// View renders the report.
func (v *View) View() string {
	if v.report == nil {
		return v.styles.Muted.Render("No report selected.")
	}
	r := v.report
	s := v.styles

	var b strings.Builder
	b.WriteString(s.Title.Render(r.Kind.Description()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", s.Subtitle.Render("Document:"), r.StoredName)
	fmt.Fprintf(&b, "%s %s  %s\n", s.Subtitle.Render("Report:"), r.ID,
		s.Muted.Render(r.CreatedAt.Format("2006-01-02 15:04")))
	fmt.Fprintf(&b, "%s %s\n\n", s.Subtitle.Render("Scorer:"), r.ScorerTier.Description())
	b.WriteString(s.Box.Render(render.Headline(r)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %d units, %d escalated, %d fallback\n",
		s.Subtitle.Render("Units:"), r.TotalUnits, r.Escalated, r.FallbackCount)
	for _, class := range r.Kind.Classes() {
		fmt.Fprintf(&b, "  %-12s %d\n", s.Class(r.Kind, class).Render(string(class)), r.Counts[class])
	}

	if len(r.MatchedFiles) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Subtitle.Render("Matched files:"))
		b.WriteString("\n")
		for _, m := range r.MatchedFiles {
			fmt.Fprintf(&b, "  %-30s %5.1f%%  (%d refs)\n", m.Source, m.AvgSimilarity*100, m.References)
		}
	}

	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render(fmt.Sprintf("Flagged (%d):", len(r.Flagged))))
	b.WriteString("\n")
	if len(r.Flagged) == 0 {
		b.WriteString(s.Muted.Render("  Nothing flagged."))
		b.WriteString("\n")
	}
	for i, f := range r.Flagged {
		line := fmt.Sprintf("#%-3d %-12s %.2f  %s", f.UnitIndex, f.Verdict.Classification, f.Score,
			truncate(f.Excerpt, excerptWidth))
		if i == v.selected {
			b.WriteString(s.Selected.Render("> " + line))
		} else {
			b.WriteString(s.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.Help.Render(keymap.Help(v.keys.Up, v.keys.Down, v.keys.Select, v.keys.Back)))
	return b.String()
}

// truncate shortens text to at most n runes on one line.
func truncate(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-3]) + "..."
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Report returns the displayed report.
func (v *View) Report() *domain.AggregateReport {
	return v.report
}

// Selected returns the index of the flagged unit under the cursor.
func (v *View) Selected() int {
	return v.selected
}
