// Package watcher provides recursive file system watching with debouncing
// for source trees and shortcut config files.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/JCorners68/unot/pkg/shortcuts"
	"github.com/JCorners68/unot/pkg/srcscan"
)

// EventKind tells a source edit from a shortcut config edit.
type EventKind int

const (
	SourceChanged EventKind = iota
	ConfigChanged
)

func (k EventKind) String() string {
	if k == ConfigChanged {
		return "config"
	}
	return "source"
}

// Event is one settled file change.
type Event struct {
	Path string
	Kind EventKind
}

// Watcher monitors directory trees and reports settled changes in batches.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	roots     []string
	debounce  time.Duration
	exts      []string
	excludes  []string
	log       zerolog.Logger
	onChange  chan []Event
	done      chan struct{}
	stopOnce  sync.Once
	stopErr   error
}

// Config holds watcher configuration options.
type Config struct {
	Roots       []string
	DebounceDur time.Duration
	Extensions  []string // Source types to report; srcscan defaults when empty
	Excludes    []string // Directory names never watched
	Logger      zerolog.Logger
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(roots ...string) Config {
	return Config{
		Roots:       roots,
		DebounceDur: 200 * time.Millisecond,
		Extensions:  srcscan.DefaultExtensions,
		Excludes:    srcscan.DefaultExcludes,
		Logger:      zerolog.Nop(),
	}
}

// New creates a new watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = srcscan.DefaultExtensions
	}

	return &Watcher{
		fsWatcher: fsw,
		roots:     cfg.Roots,
		debounce:  cfg.DebounceDur,
		exts:      srcscan.NormalizeExtensions(exts),
		excludes:  cfg.Excludes,
		log:       cfg.Logger,
		onChange:  make(chan []Event, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start watches every directory under the roots.
// Returns a channel that receives each debounced batch of changes.
func (w *Watcher) Start() (<-chan []Event, error) {
	for _, root := range w.roots {
		if err := w.addTree(root); err != nil {
			return nil, err
		}
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources. Later calls return
// the result of the first.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
		w.stopErr = w.fsWatcher.Close()
	})
	return w.stopErr
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excluded(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("watching directory %s: %w", path, err)
		}
		return nil
	})
}

// loop processes file system events with debouncing. Paths touched while
// the timer runs are merged into one batch.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending = make(map[string]EventKind)
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) && w.isNewDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					w.log.Debug().Err(err).Msg("watch new directory")
				}
				continue
			}

			kind, ok := w.classify(event)
			if !ok {
				continue
			}
			pending[event.Name] = kind

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if len(pending) == 0 {
				continue
			}
			select {
			case w.onChange <- batch(pending):
				pending = make(map[string]EventKind)
			default:
				// Receiver busy; keep the paths and try again later.
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Debug().Err(err).Msg("watch error")

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isNewDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir() && !w.excluded(filepath.Base(path))
}

// classify decides whether an event matters and what kind it is.
func (w *Watcher) classify(event fsnotify.Event) (EventKind, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return 0, false
	}
	base := filepath.Base(event.Name)
	for _, name := range shortcuts.ConfigNames {
		if base == name {
			return ConfigChanged, true
		}
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range w.exts {
		if ext == e {
			return SourceChanged, true
		}
	}
	return 0, false
}

func (w *Watcher) excluded(name string) bool {
	for _, ex := range w.excludes {
		if name == ex {
			return true
		}
	}
	return false
}

// batch orders config changes first so shortcuts reload before sources
// are fixed.
func batch(pending map[string]EventKind) []Event {
	out := make([]Event, 0, len(pending))
	for path, kind := range pending {
		out = append(out, Event{Path: path, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == ConfigChanged
		}
		return out[i].Path < out[j].Path
	})
	return out
}
