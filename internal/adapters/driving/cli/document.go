package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document"},
	Short:   "Manage stored raw documents",
	Long:    `List or export the raw documents kept from previous evaluations.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [name]",
	Short: "Print a stored document's raw bytes",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentContentCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	blobs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(blobs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	for _, b := range blobs {
		cmd.Printf("  %s\n", b.Name)
		cmd.Printf("    Digest: %s\n", b.Digest)
		if b.MIMEType != "" {
			cmd.Printf("    Type: %s\n", b.MIMEType)
		}
		cmd.Printf("    Size: %s\n", formatBytes(b.Size))
		cmd.Printf("    Stored: %s\n", b.CreatedAt.Format("2006-01-02 15:04"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(blobs))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	_, content, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if _, err := cmd.OutOrStdout().Write(content); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// formatBytes renders a size with binary units.
func formatBytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}
