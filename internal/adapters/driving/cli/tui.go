package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [report-id]",
	Short: "Browse reports in an interactive terminal UI",
	Long: `Launch the interactive terminal browser.

Reports open into their flagged units, and each unit shows its excerpt,
scores and verifier verdict. Documents lead to their reports. Settings
can be edited in place.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Open / Edit
  r        - Reload
  Esc      - Back
  q        - Quit from the menu`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

// runProgram runs a bubbletea model. Tests replace it.
var runProgram = func(cmd *cobra.Command, app *tui.App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(commandContext(cmd)))
	_, err := p.Run()
	return err
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	ports := &tui.Ports{
		Report:   reportService,
		Document: documentService,
		Settings: settingsService,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(commandContext(cmd))
	if len(args) == 1 {
		app.WithReport(args[0])
	}

	if err := runProgram(cmd, app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
