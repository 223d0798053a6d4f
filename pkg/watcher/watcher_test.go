package watcher_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCorners68/unot/pkg/rewrite"
	"github.com/JCorners68/unot/pkg/watcher"
)

func newWatcher(t *testing.T, roots ...string) (*watcher.Watcher, <-chan []watcher.Event) {
	t.Helper()
	cfg := watcher.DefaultConfig(roots...)
	cfg.DebounceDur = 50 * time.Millisecond
	w, err := watcher.New(cfg)
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	batches, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return w, batches
}

func receive(t *testing.T, batches <-chan []watcher.Event) []watcher.Event {
	t.Helper()
	select {
	case events := <-batches:
		return events
	case <-time.After(2 * time.Second):
		t.Fatal("expected notification but got timeout")
		return nil
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.html")
	b := filepath.Join(dir, "b.vue")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0644))

	_, batches := newWatcher(t, dir)

	// Rapid writes to two files should coalesce into one batch
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(a, []byte(fmt.Sprintf("a%d", i)), 0644))
		require.NoError(t, os.WriteFile(b, []byte(fmt.Sprintf("b%d", i)), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	events := receive(t, batches)
	assert.Equal(t, []watcher.Event{
		{Path: a, Kind: watcher.SourceChanged},
		{Path: b, Kind: watcher.SourceChanged},
	}, events)

	select {
	case <-batches:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_ConfigFirst(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	cfg := filepath.Join(dir, "uno.config.ts")
	require.NoError(t, os.WriteFile(page, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(cfg, []byte("export default {}"), 0644))

	_, batches := newWatcher(t, dir)

	require.NoError(t, os.WriteFile(page, []byte("y"), 0644))
	require.NoError(t, os.WriteFile(cfg, []byte("export default { shortcuts: {} }"), 0644))

	events := receive(t, batches)
	require.Len(t, events, 2)
	assert.Equal(t, watcher.Event{Path: cfg, Kind: watcher.ConfigChanged}, events[0])
	assert.Equal(t, watcher.Event{Path: page, Kind: watcher.SourceChanged}, events[1])
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("initial"), 0644))
	skipped := filepath.Join(dir, "node_modules")
	require.NoError(t, os.Mkdir(skipped, 0755))

	_, batches := newWatcher(t, dir)

	require.NoError(t, os.WriteFile(other, []byte("changed"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(skipped, "index.js"), []byte("x"), 0644))

	select {
	case events := <-batches:
		t.Fatalf("unexpected notification: %v", events)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	_, batches := newWatcher(t, dir)

	sub := filepath.Join(dir, "components")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the loop a moment to add the new directory
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "Card.vue")
	require.NoError(t, os.WriteFile(path, []byte("<template></template>"), 0644))

	events := receive(t, batches)
	assert.Contains(t, events, watcher.Event{Path: path, Kind: watcher.SourceChanged})
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
}

func TestWatcher_StopTwice(t *testing.T) {
	w, _ := newWatcher(t, t.TempDir())

	require.NoError(t, w.Stop())
	assert.NotPanics(t, func() {
		assert.NoError(t, w.Stop())
	})
}

type countingRewriter struct {
	engine *rewrite.Engine
	calls  atomic.Int64
}

func (c *countingRewriter) Rewrite(value string) string {
	c.calls.Add(1)
	return c.engine.Rewrite(value)
}

func TestFixer_Fix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(`<div class="w10 flex1">x</div>`), 0600))

	rw := &countingRewriter{engine: rewrite.MustNew(rewrite.DefaultOptions())}
	f := watcher.NewFixer(rw, nil, zerolog.Nop())

	changed, err := f.Fix(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<div class="w-10 flex-1">x</div>`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// The write event of our own output is skipped without rewriting
	calls := rw.calls.Load()
	changed, err = f.Fix(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, calls, rw.calls.Load())

	// A later save of the same content is checked again
	changed, err = f.Fix(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Greater(t, rw.calls.Load(), calls)
}

func TestFixer_MissingFile(t *testing.T) {
	f := watcher.NewFixer(rewrite.MustNew(rewrite.DefaultOptions()), nil, zerolog.Nop())
	changed, err := f.Fix(context.Background(), filepath.Join(t.TempDir(), "gone.html"))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFixer_Handle(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`<p class="pointer"></p>`), 0644))

	var reloaded []string
	reload := func(_ context.Context, path string) error {
		reloaded = append(reloaded, path)
		if filepath.Base(path) == "uno.shortcuts.yaml" {
			return errors.New("bad yaml")
		}
		return nil
	}
	f := watcher.NewFixer(rewrite.MustNew(rewrite.DefaultOptions()), reload, zerolog.Nop())

	err := f.Handle(context.Background(), []watcher.Event{
		{Path: filepath.Join(dir, "uno.config.ts"), Kind: watcher.ConfigChanged},
		{Path: filepath.Join(dir, "uno.shortcuts.yaml"), Kind: watcher.ConfigChanged},
		{Path: page, Kind: watcher.SourceChanged},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad yaml")
	assert.Len(t, reloaded, 2)

	data, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Equal(t, `<p class="cursor-pointer"></p>`, string(data))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`<b></b>`), 0644))

	cfg := watcher.DefaultConfig(dir)
	cfg.DebounceDur = 50 * time.Millisecond
	w, err := watcher.New(cfg)
	require.NoError(t, err)
	f := watcher.NewFixer(rewrite.MustNew(rewrite.DefaultOptions()), nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx, w, f) }()

	// Let Run register the watches
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(page, []byte(`<b class="w10"></b>`), 0644))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(page)
		return err == nil && string(data) == `<b class="w-10"></b>`
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
