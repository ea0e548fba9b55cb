package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-pivot/internal/chain"
	"github.com/mvp-joe/project-pivot/internal/config"
)

var schemaSource sourceFlags

// schemaCmd groups schema inspection commands
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect collections and link types",
}

var schemaPathCmd = &cobra.Command{
	Use:   "path <from> <to>",
	Short: "Print the shortest query stem between two collections",
	Long: `Path finds the query stem with the fewest link types that leads from one
collection to another and prints it as JSON, ready to paste into a request.

Example:
  pivot schema path people clients
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return executeSchemaPath(cmd.Context(), cfg, schemaSource, args[0], args[1], cmd.OutOrStdout())
	},
}

var schemaLinksCmd = &cobra.Command{
	Use:   "links <collection>",
	Short: "List the link types that can extend a stem ending at a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return executeSchemaLinks(cmd.Context(), cfg, schemaSource, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaPathCmd)
	schemaCmd.AddCommand(schemaLinksCmd)
	schemaCmd.PersistentFlags().StringVar(&schemaSource.dataset, "dataset", "", "Read a JSON dataset instead of the workspace")
	schemaCmd.PersistentFlags().StringVar(&schemaSource.db, "db", "", "Workspace database path (default from config)")
}

func loadSchemaGraph(ctx context.Context, cfg *config.Config, src sourceFlags) (*chain.SchemaGraph, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	source, closeSource, err := src.open(cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	collections, linkTypes, err := source.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	g := chain.NewSchemaGraph(collections, linkTypes)
	debugf("Schema graph has %d collections", g.Order())
	return g, nil
}

func executeSchemaPath(ctx context.Context, cfg *config.Config, src sourceFlags, from, to string, out io.Writer) error {
	g, err := loadSchemaGraph(ctx, cfg, src)
	if err != nil {
		return err
	}
	stem, err := g.Path(from, to)
	if err != nil {
		return err
	}
	return writeJSON(out, stem, cfg.Output.Indent)
}

func executeSchemaLinks(ctx context.Context, cfg *config.Config, src sourceFlags, collectionID string, out io.Writer) error {
	g, err := loadSchemaGraph(ctx, cfg, src)
	if err != nil {
		return err
	}
	links := g.LinkTypesOf(collectionID)
	if len(links) == 0 {
		fmt.Fprintf(out, "No link types touch '%s'\n", collectionID)
		return nil
	}
	fmt.Fprintln(out, strings.Join(links, "\n"))
	return nil
}
