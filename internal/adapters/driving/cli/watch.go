package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
	"github.com/custodia-labs/veritas-cli/internal/identity"
	"github.com/custodia-labs/veritas-cli/internal/logger"
	"github.com/custodia-labs/veritas-cli/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Evaluate documents as they appear in a directory",
	Long: `Watch a directory and evaluate every supported document that is created
or modified. Each distinct document content is evaluated once.

Use --existing to evaluate the documents already in the directory first.
Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// Flags for the watch command.
var (
	watchKind     string
	watchExisting bool
)

func init() {
	watchCmd.Flags().StringVarP(&watchKind, "kind", "k", string(domain.PipelinePlagiarism),
		"Pipeline to run (plagiarism, ai, novelty)")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Evaluate documents already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}
	kind, err := domain.ParsePipelineKind(watchKind)
	if err != nil {
		return fmt.Errorf("invalid kind %q: %w", watchKind, err)
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", dir, domain.ErrInvalidInput)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(dir, supportedExts)
	ev := &watchEvaluator{ctx: ctx, cmd: cmd, kind: kind, seen: make(map[string]bool)}

	if watchExisting {
		paths, err := w.Existing()
		if err != nil {
			return err
		}
		for _, path := range paths {
			ev.evaluate(path)
		}
	}

	paths, errs := w.Watch(ctx)
	cmd.Printf("Watching %s for %s evaluation (Ctrl+C to stop)\n", dir, kind)

	for {
		select {
		case path, ok := <-paths:
			if !ok {
				return nil
			}
			ev.evaluate(path)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "dir", dir, "error", err)
		}
	}
}

// watchEvaluator evaluates each distinct document content once.
type watchEvaluator struct {
	ctx  context.Context
	cmd  *cobra.Command
	kind domain.PipelineKind
	seen map[string]bool
}

func (e *watchEvaluator) evaluate(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("reading watched file failed", "path", path, "error", err)
		return
	}

	digest := identity.Digest(content)
	if e.seen[digest] {
		logger.Debug("skipping %s: content already evaluated", path)
		return
	}
	e.seen[digest] = true

	report, err := evaluationService.Evaluate(e.ctx, driving.EvaluateRequest{
		Filename: filepath.Base(path),
		Content:  content,
		Kind:     e.kind,
	})
	if err != nil {
		e.cmd.Printf("  %s: %v\n", path, err)
		return
	}
	e.cmd.Println(newRenderer(e.cmd.OutOrStdout()).Summary(report))
}
