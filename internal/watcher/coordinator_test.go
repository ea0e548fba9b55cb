package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for WatchCoordinator:
// - Start runs an initial rebuild with no files
// - A file change pauses the watcher, rebuilds with the files, resumes
// - A failing rebuild is logged and watching continues
// - A failing initial rebuild is returned and the watcher is stopped
// - A failing watcher start is returned
// - Context cancellation stops the watcher

type mockFileWatcher struct {
	mu          sync.Mutex
	startErr    error
	callback    func(files []string)
	events      []string
	stopCalled  bool
	started     chan struct{}
	startedOnce sync.Once
}

func newMockFileWatcher() *mockFileWatcher {
	return &mockFileWatcher{started: make(chan struct{})}
}

func (m *mockFileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.callback = callback
	m.startedOnce.Do(func() { close(m.started) })
	return nil
}

func (m *mockFileWatcher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return nil
}

func (m *mockFileWatcher) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "pause")
}

func (m *mockFileWatcher) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "resume")
}

func (m *mockFileWatcher) trigger(files []string) {
	m.mu.Lock()
	cb := m.callback
	m.mu.Unlock()
	cb(files)
}

func (m *mockFileWatcher) log(entry string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, entry)
}

func (m *mockFileWatcher) snapshot() ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...), m.stopCalled
}

func runCoordinator(t *testing.T, files *mockFileWatcher, rebuild RebuildFunc) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWatchCoordinator(files, rebuild).Start(ctx) }()

	select {
	case <-files.started:
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("watcher not started")
	}
	return cancel, done
}

func TestWatchCoordinator_RebuildsOnChange(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	var calls [][]string
	var mu sync.Mutex
	rebuild := RebuildFunc(func(ctx context.Context, changed []string) error {
		mu.Lock()
		calls = append(calls, changed)
		mu.Unlock()
		files.log("rebuild")
		return nil
	})

	cancel, done := runCoordinator(t, files, rebuild)

	files.trigger([]string{"/data/a.json"})
	files.trigger(nil)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)
	assert.Nil(t, calls[0], "initial rebuild has no files")
	assert.Equal(t, []string{"/data/a.json"}, calls[1])

	events, stopped := files.snapshot()
	assert.Equal(t, []string{"rebuild", "pause", "rebuild", "resume"}, events)
	assert.True(t, stopped)
}

func TestWatchCoordinator_ContinuesAfterRebuildError(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	var n int
	var mu sync.Mutex
	rebuild := RebuildFunc(func(ctx context.Context, changed []string) error {
		mu.Lock()
		defer mu.Unlock()
		n++
		if changed != nil {
			return errors.New("bad dataset")
		}
		return nil
	})

	cancel, done := runCoordinator(t, files, rebuild)
	files.trigger([]string{"a"})
	files.trigger([]string{"a"})
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, n)
	events, _ := files.snapshot()
	assert.Equal(t, []string{"pause", "resume", "pause", "resume"}, events)
}

func TestWatchCoordinator_InitialRebuildError(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	boom := errors.New("missing dataset")

	err := NewWatchCoordinator(files, RebuildFunc(func(context.Context, []string) error {
		return boom
	})).Start(context.Background())

	assert.ErrorIs(t, err, boom)
	_, stopped := files.snapshot()
	assert.True(t, stopped)
}

func TestWatchCoordinator_WatcherStartError(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	files.startErr = errors.New("no inotify")

	err := NewWatchCoordinator(files, RebuildFunc(func(context.Context, []string) error {
		return nil
	})).Start(context.Background())

	assert.EqualError(t, err, "no inotify")
}
