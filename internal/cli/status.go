package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-pivot/internal/storage"
)

var statusDBFlag string

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace revision and record counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dbPath := statusDBFlag
		if dbPath == "" {
			dbPath = cfg.Storage.DBPath
		}
		return executeStatus(dbPath, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusDBFlag, "db", "", "Workspace database path (default from config)")
}

func executeStatus(dbPath string, out io.Writer) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No workspace at %s (run 'pivot import' first)\n", dbPath)
		return nil
	}

	db, err := storage.OpenWorkspaceReadOnly(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	r := storage.NewSnapshotReaderWithDB(db)
	revision, err := r.Revision()
	if err != nil {
		return err
	}
	importedAt, err := r.ImportedAt()
	if err != nil {
		return err
	}
	counts, err := r.Counts()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Workspace:      %s\n", dbPath)
	if revision == "" {
		fmt.Fprintln(out, "Revision:       (empty)")
	} else {
		fmt.Fprintf(out, "Revision:       %s\n", revision)
		fmt.Fprintf(out, "Imported at:    %s\n", importedAt)
	}
	fmt.Fprintf(out, "Collections:    %s\n", formatNumber(counts.Collections))
	fmt.Fprintf(out, "Link types:     %s\n", formatNumber(counts.LinkTypes))
	fmt.Fprintf(out, "Documents:      %s\n", formatNumber(counts.Documents))
	fmt.Fprintf(out, "Link instances: %s\n", formatNumber(counts.LinkInstances))
	return nil
}
