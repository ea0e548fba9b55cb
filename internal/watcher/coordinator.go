package watcher

import (
	"context"
	"log"
)

// WatchCoordinator routes debounced file changes to a Rebuilder, pausing
// the watcher while a rebuild runs.
type WatchCoordinator struct {
	files     FileWatcher
	rebuilder Rebuilder
	ctx       context.Context
}

// NewWatchCoordinator creates a new watch coordinator.
func NewWatchCoordinator(files FileWatcher, rebuilder Rebuilder) *WatchCoordinator {
	return &WatchCoordinator{
		files:     files,
		rebuilder: rebuilder,
	}
}

// Start runs an initial rebuild, then rebuilds on every change.
// Blocks until context is cancelled. A failing initial rebuild is returned;
// later failures are logged and watching continues.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	c.ctx = ctx

	if err := c.rebuilder.Rebuild(ctx, nil); err != nil {
		c.cleanup()
		return err
	}

	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

// cleanup stops the file watcher.
func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
}

// handleFileChange processes file change events from the file watcher.
func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	c.files.Pause()
	defer c.files.Resume()

	if err := c.ctx.Err(); err != nil {
		return
	}

	if err := c.rebuilder.Rebuild(c.ctx, files); err != nil {
		log.Printf("Error: rebuild failed: %v", err)
	}
}
