package watcher

import "context"

// FileWatcher monitors dataset files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Rebuilder recomputes results from scratch after the watched files change.
type Rebuilder interface {
	// Rebuild reloads the inputs and re-runs the aggregation.
	// files is empty for the initial build.
	Rebuild(ctx context.Context, files []string) error
}

// RebuildFunc adapts a function to Rebuilder.
type RebuildFunc func(ctx context.Context, files []string) error

// Rebuild calls f.
func (f RebuildFunc) Rebuild(ctx context.Context, files []string) error {
	return f(ctx, files)
}
