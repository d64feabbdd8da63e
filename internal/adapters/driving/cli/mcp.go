package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/novelcheck/internal/adapters/driving/mcp"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes three tools: query_novelty, check_plagiarism and
index_info, plus the novelcheck://index resource.

By default, the server communicates over stdio using JSON-RPC. Use --port
to start an HTTP server instead (useful with MCP Inspector).

Examples:
  # Stdio mode (default)
  novelcheck mcp serve

  # HTTP mode
  novelcheck mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "novelcheck": {
        "command": "/path/to/novelcheck",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := openRuntime(true, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.Warn("closing embedding provider: %v", cerr)
		}
	}()

	server, err := mcp.NewServer(&mcp.Ports{
		Novelty:    rt.Novelty,
		Plagiarism: rt.Plagiarism,
		Index:      rt.Index,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
