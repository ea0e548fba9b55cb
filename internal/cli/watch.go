package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-pivot/internal/config"
	"github.com/mvp-joe/project-pivot/internal/engine"
	"github.com/mvp-joe/project-pivot/internal/storage"
	"github.com/mvp-joe/project-pivot/internal/watcher"
)

var (
	watchDatasetFlag string
	watchRequestFlag string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run an aggregation whenever the dataset or request changes",
	Long: `Watch runs the request once, then again every time the dataset file or the
request file is saved. Every run rebuilds from scratch and prints a complete
JSON response. Rapid saves are coalesced (see watch.debounce_ms).

Example:
  pivot watch --dataset data.json --request req.json
`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchDatasetFlag, "dataset", "", "JSON dataset file to watch")
	watchCmd.Flags().StringVarP(&watchRequestFlag, "request", "r", "", "Request JSON file to watch")
	watchCmd.MarkFlagRequired("dataset")
	watchCmd.MarkFlagRequired("request")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	err = executeWatch(ctx, cfg, watchDatasetFlag, watchRequestFlag, cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func executeWatch(ctx context.Context, cfg *config.Config, datasetPath, requestPath string, out io.Writer) error {
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	files, err := watcher.NewFileWatcher(
		[]string{datasetPath, requestPath},
		time.Duration(cfg.Watch.DebounceMs)*time.Millisecond,
	)
	if err != nil {
		return err
	}

	r := &watchRebuilder{
		engine:      eng,
		source:      storage.NewDatasetSource(datasetPath),
		requestPath: requestPath,
		indent:      cfg.Output.Indent,
		out:         out,
	}

	log.Printf("Watching %s and %s (Ctrl+C to stop)", datasetPath, requestPath)
	return watcher.NewWatchCoordinator(files, r).Start(ctx)
}

// watchRebuilder reloads the request and the dataset and prints a fresh
// response on every rebuild.
type watchRebuilder struct {
	engine      *engine.Engine
	source      storage.Source
	requestPath string
	indent      bool
	out         io.Writer
}

func (r *watchRebuilder) Rebuild(ctx context.Context, files []string) error {
	if len(files) > 0 {
		debugf("Changed: %v", files)
	}

	req, err := loadRequest(r.requestPath)
	if err != nil {
		return err
	}

	snap, revision, err := r.source.Snapshot(ctx, req.Stem)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	resp, err := r.engine.Run(ctx, snap, revision, req)
	if err != nil {
		return err
	}

	return writeJSON(r.out, resp, r.indent)
}
