package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage comparison corpora",
	Long: `List, extend, or rebuild the per-pipeline comparison corpora.

Each pipeline keeps its own corpus. Evaluations grow it automatically;
these commands add material without evaluating it.`,
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus entries",
	Args:  cobra.NoArgs,
	RunE:  runCorpusList,
}

var corpusAddCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Add documents to a corpus without evaluating them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCorpusAdd,
}

var corpusRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Add every stored document missing from a corpus",
	Args:  cobra.NoArgs,
	RunE:  runCorpusRebuild,
}

// corpusKind is the --kind flag shared by corpus subcommands.
var corpusKind string

func init() {
	corpusCmd.PersistentFlags().StringVarP(&corpusKind, "kind", "k", string(domain.PipelinePlagiarism),
		"Pipeline whose corpus to use (plagiarism, ai, novelty)")

	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusAddCmd)
	corpusCmd.AddCommand(corpusRebuildCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusList(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}
	kind, err := domain.ParsePipelineKind(corpusKind)
	if err != nil {
		return fmt.Errorf("invalid kind %q: %w", corpusKind, err)
	}

	entries, err := corpusService.List(commandContext(cmd), kind)
	if err != nil {
		return fmt.Errorf("failed to list corpus: %w", err)
	}

	if len(entries) == 0 {
		cmd.Printf("The %s corpus is empty.\n", kind)
		return nil
	}

	cmd.Printf("Corpus %s:\n\n", kind)
	for i := range entries {
		e := &entries[i]
		vectors := "no"
		if e.HasEmbeddings() {
			vectors = "yes"
		}
		cmd.Printf("  %s\n", e.Source)
		cmd.Printf("    ID: %s\n", e.ID)
		cmd.Printf("    Texts: %d  Embeddings: %s\n", len(e.Texts), vectors)
		cmd.Printf("    Added: %s\n", e.CreatedAt.Format("2006-01-02 15:04"))
		cmd.Println()
	}

	cmd.Printf("Total: %d entries\n", len(entries))
	return nil
}

func runCorpusAdd(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}
	kind, err := domain.ParsePipelineKind(corpusKind)
	if err != nil {
		return fmt.Errorf("invalid kind %q: %w", corpusKind, err)
	}

	ctx := commandContext(cmd)
	var failed int
	for _, path := range args {
		content, err := readDocument(path)
		if err != nil {
			cmd.Printf("  %s: %v\n", path, err)
			failed++
			continue
		}

		entry, err := corpusService.Add(ctx, kind, &domain.RawDocument{
			Filename: filepath.Base(path),
			Content:  content,
		})
		if err != nil {
			cmd.Printf("  %s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("  %s: added as %s (%d texts)\n", path, entry.Source, len(entry.Texts))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents not added", failed, len(args))
	}
	return nil
}

func runCorpusRebuild(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}
	kind, err := domain.ParsePipelineKind(corpusKind)
	if err != nil {
		return fmt.Errorf("invalid kind %q: %w", corpusKind, err)
	}

	added, err := corpusService.Rebuild(commandContext(cmd), kind)
	if err != nil {
		return fmt.Errorf("failed to rebuild corpus: %w", err)
	}

	cmd.Printf("Added %d stored documents to the %s corpus.\n", added, kind)
	return nil
}
