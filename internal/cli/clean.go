package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	cleanQuietFlag bool
	cleanDBFlag    string
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the SQLite workspace",
	Long: `Clean removes the workspace database so the next 'pivot import' starts from
an empty file. The configuration file (.pivot/config.yml) is preserved.

Examples:
  pivot clean
  pivot clean --quiet
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dbPath := cleanDBFlag
		if dbPath == "" {
			dbPath = cfg.Storage.DBPath
		}
		return executeClean(dbPath, cleanQuietFlag, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
	cleanCmd.Flags().StringVar(&cleanDBFlag, "db", "", "Workspace database path (default from config)")
}

func executeClean(dbPath string, quiet bool, out io.Writer) error {
	info, err := os.Stat(dbPath)
	if os.IsNotExist(err) {
		if !quiet {
			fmt.Fprintln(out, "No workspace found")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat workspace: %w", err)
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)

	// SQLite side files may or may not exist
	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm", dbPath + "-journal"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	if !quiet {
		fmt.Fprintf(out, "✓ Removed workspace %s (~%.1f MB)\n", dbPath, sizeMB)
		fmt.Fprintln(out, "Run 'pivot import' to load data again")
	}
	return nil
}
