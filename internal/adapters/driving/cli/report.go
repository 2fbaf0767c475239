package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "View stored evaluation reports",
}

var reportListCmd = &cobra.Command{
	Use:   "list [digest]",
	Short: "List reports, optionally for one document digest",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show [report-id]",
	Short: "Show a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

// reportJSON is the --json flag of report show.
var reportJSON bool

func init() {
	reportShowCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the report as JSON")

	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportList(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	var digest string
	if len(args) == 1 {
		digest = args[0]
	}

	summaries, err := reportService.List(commandContext(cmd), digest)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if len(summaries) == 0 {
		cmd.Println("No reports found.")
		return nil
	}

	for _, s := range summaries {
		cmd.Printf("  %s  %-10s %6.1f%%  %s  %s\n",
			s.ID, s.Kind, s.Percentage, s.CreatedAt.Format("2006-01-02 15:04"), s.StoredName)
	}
	cmd.Printf("\nTotal: %d reports\n", len(summaries))
	return nil
}

func runReportShow(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	report, err := reportService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	if reportJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return newRenderer(cmd.OutOrStdout()).Report(cmd.OutOrStdout(), report)
}
