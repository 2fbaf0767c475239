package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with any MCP-compatible assistant.

Use --http to serve streamable HTTP instead, for example for MCP Inspector.

Examples:
  # Stdio mode (default)
  veritas mcp

  # HTTP mode
  veritas mcp --http localhost:8080

Assistant configuration:
  {
    "mcpServers": {
      "veritas": {
        "command": "/path/to/veritas",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

// Flags for the mcp command.
var (
	mcpHTTPAddr     string
	mcpMaxFileBytes int64
)

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "Serve streamable HTTP on this address instead of stdio")
	mcpCmd.Flags().Int64Var(&mcpMaxFileBytes, "max-file-bytes", mcp.DefaultMaxFileBytes,
		"Largest document evaluate_document reads from disk")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	ports := &mcp.Ports{
		Evaluation: evaluationService,
		Report:     reportService,
		Corpus:     corpusService,
		Document:   documentService,
	}

	server, err := mcp.NewServer(ports, mcp.WithMaxFileBytes(mcpMaxFileBytes))
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(commandContext(cmd), mcpHTTPAddr)
	}

	return server.Run(commandContext(cmd))
}
