package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekam-build/ekam/internal/logger"
)

type fakeTree struct {
	mu      sync.Mutex
	added   map[string]bool
	removed map[string]bool
}

func newFakeTree() *fakeTree {
	return &fakeTree{added: map[string]bool{}, removed: map[string]bool{}}
}

func (t *fakeTree) AddSourceFile(relPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.added[relPath] = true
	delete(t.removed, relPath)
}

func (t *fakeTree) RemoveSourceFile(relPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removed[relPath] = true
	delete(t.added, relPath)
}

func (t *fakeTree) has(relPath string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.added[relPath]
}

func (t *fakeTree) wasRemoved(relPath string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removed[relPath]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_InitialWalkReportsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.cpp"), []byte("int main(){}"), 0o644))

	tree := newFakeTree()
	w, err := New(dir, tree, nil, logger.NewLogger(logger.WithQuiet()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, func() bool { return tree.has("main.cpp") })
}

func TestWatcher_IgnoresMatchingGlobs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "cache.o"), []byte{}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.cpp"), []byte{}, 0o644))

	tree := newFakeTree()
	w, err := New(dir, tree, []string{"build/**"}, logger.NewLogger(logger.WithQuiet()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, func() bool { return tree.has("keep.cpp") })
	time.Sleep(100 * time.Millisecond)
	assert.False(t, tree.has("build/cache.o"))
}

func TestWatcher_ReportsCreateAndRemove(t *testing.T) {
	dir := t.TempDir()
	tree := newFakeTree()
	w, err := New(dir, tree, nil, logger.NewLogger(logger.WithQuiet()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	path := filepath.Join(dir, "new.cpp")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	waitFor(t, func() bool { return tree.has("new.cpp") })

	require.NoError(t, os.Remove(path))
	waitFor(t, func() bool { return tree.wasRemoved("new.cpp") })
}
