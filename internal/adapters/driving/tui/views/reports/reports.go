// Package reports provides the stored report list view for the TUI.
package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
)

// errNoService is reported when the view runs without a report service.
var errNoService = errors.New("report service not available")

// View lists report summaries, newest first.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	service driving.ReportService
	ctx     context.Context

	// digest and document narrow the list to one document when set.
	digest   string
	document string

	reports      []domain.ReportSummary
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a new reports view.
func NewView(s *styles.Styles, service driving.ReportService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
		service: service,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetDocument narrows the list to reports for one document digest.
// An empty digest lists every report.
func (v *View) SetDocument(digest, name string) {
	v.digest = digest
	v.document = name
	v.reports = nil
	v.selected = 0
	v.scrollOffset = 0
}

// Init loads the report list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	return v.load()
}

func (v *View) load() tea.Cmd {
	service, ctx, digest := v.service, v.ctx, v.digest
	return func() tea.Msg {
		if service == nil {
			return messages.ReportsLoaded{Err: errNoService}
		}
		reports, err := service.List(ctx, digest)
		return messages.ReportsLoaded{Reports: reports, Err: err}
	}
}

// open returns a command that fetches the full report.
func (v *View) open(id string) tea.Cmd {
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.ReportLoaded{Err: errNoService}
		}
		report, err := service.Get(ctx, id)
		return messages.ReportLoaded{Report: report, Err: err}
	}
}

// Update handles messages for the reports view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ReportsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.reports = msg.Reports
			v.selected = min(v.selected, max(len(v.reports)-1, 0))
			v.adjustScroll()
		}
		return v, nil

	case messages.ReportLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case key.Matches(msg, v.keys.Down):
		if v.selected < len(v.reports)-1 {
			v.selected++
			v.adjustScroll()
		}
	case key.Matches(msg, v.keys.Select):
		if r := v.SelectedReport(); r != nil {
			return v, v.open(r.ID)
		}
	case key.Matches(msg, v.keys.Reload):
		return v, v.Init()
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the report list.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Reports (%d)", len(v.reports))
	if v.digest != "" {
		title = fmt.Sprintf("Reports for %s (%d)", v.document, len(v.reports))
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading reports..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.reports) == 0:
		b.WriteString(v.styles.Muted.Render("No reports yet. Run 'veritas evaluate' first."))
	default:
		visible := v.visibleItemCount()
		end := min(v.scrollOffset+visible, len(v.reports))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderRow(i))
			b.WriteString("\n")
		}
		if len(v.reports) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
				v.scrollOffset+1, end, len(v.reports))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(keymap.Help(v.keys.ListHelp()...)))
	return b.String()
}

func (v *View) renderRow(i int) string {
	r := v.reports[i]
	line := fmt.Sprintf("%-10s %6.1f%%  %s  %s",
		r.Kind, r.Percentage, r.CreatedAt.Format("2006-01-02 15:04"), r.StoredName)
	if i == v.selected {
		return v.styles.Selected.Render("> " + line)
	}
	return v.styles.Normal.Render("  " + line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.adjustScroll()
}

// Reports returns the loaded summaries.
func (v *View) Reports() []domain.ReportSummary {
	return v.reports
}

// SelectedReport returns the summary under the cursor, or nil.
func (v *View) SelectedReport() *domain.ReportSummary {
	if v.selected < len(v.reports) {
		return &v.reports[v.selected]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
