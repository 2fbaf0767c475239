package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/cli/render"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file]",
	Short: "Evaluate a document",
	Long: `Evaluate a document against the local corpus.

Pipelines:
  plagiarism - copied and paraphrased segments (default)
  ai         - machine-written sentences
  novelty    - claims without a prior match

Examples:
  veritas evaluate essay.pdf
  veritas evaluate essay.docx --kind ai --threshold 0.5
  veritas evaluate notes.md --kind novelty --json`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

// Flags for the evaluate command.
var (
	evaluateKind      string
	evaluateJSON      bool
	evaluateThreshold float64
	evaluateTimeout   time.Duration
)

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateKind, "kind", "k", string(domain.PipelinePlagiarism),
		"Pipeline to run (plagiarism, ai, novelty)")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "Print the report as JSON")
	evaluateCmd.Flags().Float64Var(&evaluateThreshold, "threshold", 0,
		"Escalation threshold override in [0,1]")
	evaluateCmd.Flags().DurationVar(&evaluateTimeout, "timeout", 0,
		"Overall deadline for the evaluation (default from settings)")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	kind, err := domain.ParsePipelineKind(evaluateKind)
	if err != nil {
		return fmt.Errorf("invalid kind %q: %w", evaluateKind, err)
	}

	content, err := readDocument(args[0])
	if err != nil {
		return err
	}

	req := driving.EvaluateRequest{
		Filename: filepath.Base(args[0]),
		Content:  content,
		Kind:     kind,
	}
	if cmd.Flags().Changed("threshold") {
		threshold := evaluateThreshold
		req.Threshold = &threshold
	}

	ctx := commandContext(cmd)
	if evaluateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, evaluateTimeout)
		defer cancel()
	}

	report, err := evaluationService.Evaluate(ctx, req)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if evaluateJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return newRenderer(cmd.OutOrStdout()).Report(cmd.OutOrStdout(), report)
}

// readDocument reads a local document, refusing directories.
func readDocument(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}

// newRenderer uses colour only when w is a terminal.
func newRenderer(w io.Writer) *render.Renderer {
	f, ok := w.(*os.File)
	return render.New(ok && term.IsTerminal(int(f.Fd())))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
