package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-pivot/internal/storage"
)

var (
	importCollectionsFlag string
	importDBFlag          string
	importQuietFlag       bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <dataset.json>",
	Short: "Load a JSON dataset into the SQLite workspace",
	Long: `Import replaces the workspace contents with a JSON dataset:

  {"collections": [...], "linkTypes": [...], "documents": [...], "linkInstances": [...]}

Documents and link instances without an id get a generated UUID. Records that
reference unknown collections or link types are skipped.

Examples:
  # Import into .pivot/pivot.db
  pivot import data.json

  # Import only collections whose id or name starts with "p"
  pivot import data.json --collections 'p*'
`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importCollectionsFlag, "collections", "", "Glob pattern selecting collections by id or name")
	importCmd.Flags().StringVar(&importDBFlag, "db", "", "Workspace database path (default from config)")
	importCmd.Flags().BoolVarP(&importQuietFlag, "quiet", "q", false, "Disable progress bar and summary")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dbPath := importDBFlag
	if dbPath == "" {
		dbPath = cfg.Storage.DBPath
	}

	_, err = executeImport(args[0], dbPath, importCollectionsFlag, NewCLIProgressReporter(cmd.OutOrStdout(), importQuietFlag))
	return err
}

// executeImport loads the dataset, filters it and writes it to the workspace
// at dbPath, returning the new revision.
func executeImport(datasetPath, dbPath, pattern string, reporter storage.ProgressReporter) (string, error) {
	snap, err := storage.LoadDataset(datasetPath)
	if err != nil {
		return "", err
	}

	if pattern != "" {
		snap, err = storage.FilterSnapshot(snap, pattern)
		if err != nil {
			return "", err
		}
		debugf("Pattern %q kept %d collections", pattern, len(snap.Collections))
	}

	db, err := storage.OpenWorkspace(dbPath)
	if err != nil {
		return "", err
	}
	defer db.Close()

	revision, err := storage.NewSnapshotWriterWithDB(db).WithProgress(reporter).WriteSnapshot(snap)
	if err != nil {
		return "", fmt.Errorf("failed to write workspace: %w", err)
	}

	debugf("Workspace revision %s", revision)
	return revision, nil
}
