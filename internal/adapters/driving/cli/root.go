// Package cli provides the veritas command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
	"github.com/custodia-labs/veritas-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the driving ports the commands run against.
type Services struct {
	Evaluation driving.EvaluationService
	Corpus     driving.CorpusService
	Report     driving.ReportService
	Document   driving.DocumentService
	Settings   driving.SettingsService

	// Extensions lists the file extensions an extractor is registered for.
	Extensions []string

	// Close releases the resources behind the services. May be nil.
	Close func() error
}

// Bootstrap builds the services for a data directory.
type Bootstrap func(ctx context.Context, dataDir string) (*Services, error)

// Package-level services, set by the bootstrap before a command runs.
var (
	evaluationService driving.EvaluationService
	corpusService     driving.CorpusService
	reportService     driving.ReportService
	documentService   driving.DocumentService
	settingsService   driving.SettingsService
	supportedExts     []string
	closeServices     func() error
)

var bootstrap Bootstrap

// Global flags.
var (
	verbose bool
	dataDir string
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "veritas",
	Short: "Local plagiarism, AI authorship and novelty checks",
	Long: `Veritas evaluates documents against a local corpus of prior material.

Each evaluation runs one pipeline:
  plagiarism - segments compared for copied or paraphrased text
  ai         - sentences scored for machine authorship
  novelty    - claims checked against prior material

Suspicious units are escalated to an LLM verifier when one is configured.
Without one, verdicts fall back to the local score.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.veritas)")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	evaluationService = s.Evaluation
	corpusService = s.Corpus
	reportService = s.Report
	documentService = s.Document
	settingsService = s.Settings
	supportedExts = s.Extensions
	closeServices = s.Close
}

// Execute runs the root command. The bootstrap is invoked once flags are
// parsed, so --data-dir is honoured.
func Execute(ctx context.Context, b Bootstrap) error {
	bootstrap = b
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := shutdown(); err == nil {
		err = closeErr
	}
	return err
}

// DefaultDataDir returns ~/.veritas, or .veritas when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".veritas"
	}
	return filepath.Join(home, ".veritas")
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	dir := dataDir
	if dir == "" {
		dir = DefaultDataDir()
	}
	logger.Debug("using data directory %s", dir)

	services, err := bootstrap(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	SetServices(services)
	return nil
}

func shutdown() error {
	if closeServices == nil {
		return nil
	}
	closeFn := closeServices
	closeServices = nil
	if err := closeFn(); err != nil {
		return fmt.Errorf("failed to close services: %w", err)
	}
	return nil
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
