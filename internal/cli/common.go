package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mvp-joe/project-pivot/internal/config"
	"github.com/mvp-joe/project-pivot/internal/engine"
	"github.com/mvp-joe/project-pivot/internal/storage"
)

// sourceFlags selects where snapshots come from.
type sourceFlags struct {
	dataset string
	db      string
}

// open returns a Source for the dataset file when set, otherwise for the
// workspace at db (or the configured path). The returned close func is
// never nil.
func (f sourceFlags) open(cfg *config.Config) (storage.Source, func(), error) {
	if f.dataset != "" {
		debugf("Reading dataset %s", f.dataset)
		return storage.NewDatasetSource(f.dataset), func() {}, nil
	}

	dbPath := f.db
	if dbPath == "" {
		dbPath = cfg.Storage.DBPath
	}
	debugf("Reading workspace %s", dbPath)
	db, err := storage.OpenWorkspaceReadOnly(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewWorkspaceSource(db), func() { db.Close() }, nil
}

func newEngine(cfg *config.Config) (*engine.Engine, error) {
	return engine.New(engine.Options{
		CacheSize: cfg.CacheSize(),
		BaseColor: cfg.Chart.BaseColor,
		MinAlpha:  cfg.Chart.MinAlpha,
	})
}

// loadRequest reads an engine request from a JSON file.
func loadRequest(path string) (engine.Request, error) {
	var req engine.Request
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read request: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse request %s: %w", path, err)
	}
	return req, nil
}

func writeJSON(out io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(out)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
