package watcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/JCorners68/unot/pkg/changes"
	"github.com/JCorners68/unot/pkg/locator"
)

// ReloadFunc is called when a shortcut config file changes.
type ReloadFunc func(ctx context.Context, path string) error

// Fixer normalizes saved files in place.
type Fixer struct {
	rw     changes.Rewriter
	reload ReloadFunc
	log    zerolog.Logger

	mu      sync.Mutex
	written map[string][sha256.Size]byte
}

// NewFixer creates a Fixer. reload may be nil.
func NewFixer(rw changes.Rewriter, reload ReloadFunc, log zerolog.Logger) *Fixer {
	return &Fixer{
		rw:      rw,
		reload:  reload,
		log:     log,
		written: make(map[string][sha256.Size]byte),
	}
}

// Handle processes one batch. Every event is attempted; failures are
// returned together.
func (f *Fixer) Handle(ctx context.Context, events []Event) error {
	var errs error
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		switch ev.Kind {
		case ConfigChanged:
			if f.reload == nil {
				continue
			}
			if err := f.reload(ctx, ev.Path); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("reload %s: %w", ev.Path, err))
				continue
			}
			f.log.Info().Str("path", ev.Path).Msg("shortcuts reloaded")
		default:
			if _, err := f.Fix(ctx, ev.Path); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	return errs
}

// Fix rewrites the class values of one file and reports whether it changed.
// A file whose content is exactly what Fix last wrote is skipped, so the
// write event it causes does not loop.
func (f *Fixer) Fix(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	f.mu.Lock()
	last, ok := f.written[path]
	if ok && last == sum {
		delete(f.written, path)
		f.mu.Unlock()
		return false, nil
	}
	f.mu.Unlock()

	src := string(data)
	list, err := changes.Collect(ctx, f.rw, locator.KindFromPath(path), src)
	if err != nil {
		return false, fmt.Errorf("collect %s: %w", path, err)
	}
	if len(list) == 0 {
		return false, nil
	}
	out, err := changes.Apply(src, list)
	if err != nil {
		return false, fmt.Errorf("apply %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	f.mu.Lock()
	f.written[path] = sha256.Sum256([]byte(out))
	f.mu.Unlock()
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		f.mu.Lock()
		delete(f.written, path)
		f.mu.Unlock()
		return false, fmt.Errorf("write %s: %w", path, err)
	}

	f.log.Info().Str("path", path).Int("changes", len(list)).Msg("normalized")
	return true, nil
}

// Run feeds batches from w to f until ctx is done. Failures are logged and
// watching continues.
func Run(ctx context.Context, w *Watcher, f *Fixer) error {
	batches, err := w.Start()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case events := <-batches:
			if err := f.Handle(ctx, events); err != nil {
				for _, e := range multierr.Errors(err) {
					f.log.Warn().Err(e).Msg("watch")
				}
			}
		}
	}
}
