package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/views/flagged"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/views/reportdetail"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/views/reports"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/views/settings"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	ctx   context.Context

	styles *styles.Styles

	menuView         *menu.View
	reportsView      *reports.View
	reportDetailView *reportdetail.View
	flaggedView      *flagged.View
	documentsView    *documents.View
	settingsView     *settings.View

	// initialReport is opened on start when set.
	initialReport string

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:            ports,
		ctx:              context.Background(),
		styles:           s,
		menuView:         menu.NewView(s),
		reportsView:      reports.NewView(s, ports.Report),
		reportDetailView: reportdetail.NewView(s),
		flaggedView:      flagged.NewView(s),
		documentsView:    documents.NewView(s, ports.Document),
		settingsView:     settings.NewView(s, ports.Settings),
		currentView:      messages.ViewMenu,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.reportsView.SetContext(ctx)
	a.documentsView.SetContext(ctx)
	return a
}

// WithReport opens the given report as soon as the program starts.
func (a *App) WithReport(id string) *App {
	a.initialReport = id
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("veritas - Reports")}
	if a.initialReport != "" {
		id := a.initialReport
		cmds = append(cmds, func() tea.Msg { return messages.ReportSelected{ID: id} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.ReportSelected:
		return a, a.openReport(msg.ID)

	case messages.ReportsLoaded:
		a.reportsView, cmd = a.reportsView.Update(msg)
		return a, cmd

	case messages.ReportLoaded:
		if msg.Err != nil || msg.Report == nil {
			a.err = msg.Err
			a.reportsView, cmd = a.reportsView.Update(msg)
			return a, cmd
		}
		a.err = nil
		a.reportDetailView.SetReport(msg.Report)
		a.currentView = messages.ViewReportDetail
		return a, nil

	case messages.FlaggedSelected:
		a.flaggedView.SetUnit(msg.Report, msg.Index)
		a.currentView = messages.ViewFlagged
		return a, a.flaggedView.Init()

	case messages.DocumentsLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentSelected:
		a.reportsView.SetDocument(msg.Document.Digest, msg.Document.Name)
		a.currentView = messages.ViewReports
		return a, a.reportsView.Init()

	case messages.SettingsLoaded, messages.SettingSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
	}

	return a, a.forward(msg)
}

// switchView activates a view, loading its data where it has any.
func (a *App) switchView(view messages.ViewType) tea.Cmd {
	from := a.currentView
	a.currentView = view

	switch view {
	case messages.ViewReports:
		if from == messages.ViewMenu {
			a.reportsView.SetDocument("", "")
		}
		return a.reportsView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Init()
	case messages.ViewSettings:
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewReportDetail, messages.ViewFlagged, messages.ViewHelp:
	}
	return nil
}

func (a *App) openReport(id string) tea.Cmd {
	ctx, service := a.ctx, a.ports.Report
	return func() tea.Msg {
		report, err := service.Get(ctx, id)
		return messages.ReportLoaded{Report: report, Err: err}
	}
}

// forward hands a message to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewReports:
		a.reportsView, cmd = a.reportsView.Update(msg)
	case messages.ViewReportDetail:
		a.reportDetailView, cmd = a.reportDetailView.Update(msg)
	case messages.ViewFlagged:
		a.flaggedView, cmd = a.flaggedView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewReports:
		return a.reportsView.View()
	case messages.ViewReportDetail:
		return a.reportDetailView.View()
	case messages.ViewFlagged:
		return a.flaggedView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back
  ctrl+c      Quit

Lists:
  j/k, ↑/↓    Move selection
  enter       Open
  r           Reload

Reports:
  enter       Open report, then a flagged unit
  pgup/pgdn   Scroll a flagged unit

Documents:
  enter       Reports for that document

Settings:
  enter       Edit, then save
  esc         Cancel edit

` + a.styles.Help.Render("[esc] back to menu")
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.reportsView.SetDimensions(width, height)
	a.reportDetailView.SetDimensions(width, height)
	a.flaggedView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
