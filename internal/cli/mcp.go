package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-pivot/internal/mcp"
)

var mcpSource sourceFlags

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for aggregation",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM clients explore
and aggregate the workspace.

The MCP server provides:
- pivot_aggregate: run an aggregation request (tree, chart or pivot)
- pivot_stem: find the shortest stem between two collections
- pivot_schema: list collections, link types and attributes

It communicates via stdio (standard MCP transport).

Example:
  pivot mcp
  pivot mcp --dataset data.json`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpSource.dataset, "dataset", "", "Serve a JSON dataset instead of the workspace")
	mcpCmd.Flags().StringVar(&mcpSource.db, "db", "", "Workspace database path (default from config)")
	mcpCmd.MarkFlagsMutuallyExclusive("dataset", "db")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, closeSource, err := mcpSource.open(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	// stdout carries the protocol
	fmt.Fprintf(os.Stderr, "Pivot MCP Server %s\n", Version)
	if mcpSource.dataset != "" {
		fmt.Fprintf(os.Stderr, "Dataset: %s\n\n", mcpSource.dataset)
	} else {
		fmt.Fprintf(os.Stderr, "Workspace: %s\n\n", cfg.Storage.DBPath)
	}

	server, err := mcp.NewPivotServer(eng, source, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	return server.Serve(ctx)
}
