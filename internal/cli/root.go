package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/project-pivot/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pivot",
	Short: "Pivot - aggregate linked documents into trees, charts and pivot tables",
	Long: `Pivot groups documents of a collection, and the documents reachable from
them through typed links, by row and column attributes and collects value
attributes for every group.

Data lives in a JSON dataset file or in a SQLite workspace created by
'pivot import'. Results are printed as JSON, or served to LLM clients over
the Model Context Protocol with 'pivot mcp'.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .pivot/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// loadConfig loads the project configuration rooted at the working
// directory, or from --config when given.
func loadConfig() (*config.Config, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	var cfg *config.Config
	if path := viper.GetString("config"); path != "" {
		cfg, err = config.NewFileLoader(rootDir, path).Load()
	} else {
		cfg, err = config.LoadConfigFromDir(rootDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	debugf("Workspace: %s", cfg.Storage.DBPath)
	return cfg, nil
}

// debugf logs only with --verbose.
func debugf(format string, args ...any) {
	if viper.GetBool("verbose") {
		log.Printf(format, args...)
	}
}
