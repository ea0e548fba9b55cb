package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

type fileWatcher struct {
	fs       *fsnotify.Watcher
	targets  map[string]struct{} // cleaned absolute paths
	debounce time.Duration

	mu       sync.Mutex
	pending  map[string]struct{}
	paused   bool
	onChange func(files []string)

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewFileWatcher creates a watcher for the given files. The parent
// directories are watched so that editors replacing a file by rename are
// still seen. A debounce of 0 uses DefaultDebounce.
func NewFileWatcher(files []string, debounce time.Duration) (FileWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	targets := make(map[string]struct{}, len(files))
	dirs := make(map[string]struct{})
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	for dir := range dirs {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	return &fileWatcher{
		fs:       fs,
		targets:  targets,
		debounce: debounce,
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start runs the event loop in the background until ctx is done or Stop is
// called. A nil callback leaves the watcher idle.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.mu.Lock()
	fw.onChange = callback
	fw.mu.Unlock()

	loopCtx, cancel := context.WithCancel(ctx)
	fw.cancel = cancel
	go fw.run(loopCtx)
	return nil
}

func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.done
		}
		err = fw.fs.Close()
	})
	return err
}

func (fw *fileWatcher) Pause() {
	fw.mu.Lock()
	fw.paused = true
	fw.mu.Unlock()
}

func (fw *fileWatcher) Resume() {
	fw.mu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.mu.Unlock()

	if wasPaused {
		fw.flush()
	}
}

func (fw *fileWatcher) run(ctx context.Context) {
	defer close(fw.done)

	quiet := time.NewTimer(fw.debounce)
	quiet.Stop()
	defer quiet.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.fs.Events:
			if !ok {
				return
			}
			name, relevant := fw.target(event)
			if !relevant {
				continue
			}
			fw.mu.Lock()
			fw.pending[name] = struct{}{}
			fw.mu.Unlock()
			quiet.Reset(fw.debounce)

		case <-quiet.C:
			fw.flush()

		case err, ok := <-fw.fs.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: file watcher error: %v", err)
		}
	}
}

// flush hands the pending files, sorted, to the callback. Nothing happens
// while paused; the files stay pending until Resume.
func (fw *fileWatcher) flush() {
	fw.mu.Lock()
	if fw.paused || len(fw.pending) == 0 {
		fw.mu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.pending))
	for name := range fw.pending {
		files = append(files, name)
	}
	clear(fw.pending)
	callback := fw.onChange
	fw.mu.Unlock()

	sort.Strings(files)
	if callback != nil {
		callback(files)
	}
}

// target reports whether the event is a write, create or remove of one of
// the watched files.
func (fw *fileWatcher) target(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
		return "", false
	}
	name := filepath.Clean(event.Name)
	_, ok := fw.targets[name]
	return name, ok
}
