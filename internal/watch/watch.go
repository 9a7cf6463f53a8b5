// Package watch re-triggers generation when schema, document or config
// files change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hanpama/gqlmodel/internal/eventbus"
	"github.com/hanpama/gqlmodel/internal/events"
)

// DefaultDelay is how long the watcher waits for a burst of changes to end.
const DefaultDelay = 100 * time.Millisecond

// Options configures Run.
type Options struct {
	// Paths are files or directories. Directories are watched recursively.
	Paths []string
	// Extensions filters changes inside watched directories. Files named
	// explicitly in Paths always match.
	Extensions []string
	Delay      time.Duration
	// OnChange is called with the sorted set of changed paths after each
	// burst. Calls never overlap.
	OnChange func(ctx context.Context, paths []string)
	OnError  func(error)
}

// Run watches until ctx is done. Every burst of relevant changes publishes
// an events.Rebuild and then calls OnChange.
func Run(ctx context.Context, opts Options) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	files := make(map[string]bool)
	for _, p := range opts.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files[abs] = true
			if err := w.Add(filepath.Dir(abs)); err != nil {
				return err
			}
			continue
		}
		err = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			return w.Add(path)
		})
		if err != nil {
			return err
		}
	}

	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	relevant := func(name string) bool {
		if files[name] {
			return true
		}
		return slices.Contains(opts.Extensions, filepath.Ext(name))
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]bool)
		timer   *time.Timer
		running sync.Mutex
	)
	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]bool)
		mu.Unlock()
		if len(paths) == 0 || ctx.Err() != nil {
			return
		}
		slices.Sort(paths)

		running.Lock()
		defer running.Unlock()
		eventbus.Publish(ctx, events.Rebuild{Paths: paths})
		if opts.OnChange != nil {
			opts.OnChange(ctx, paths)
		}
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.Add(event.Name)
					continue
				}
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !relevant(name) {
				continue
			}
			mu.Lock()
			pending[name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(delay, flush)
			mu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if opts.OnError != nil {
				opts.OnError(err)
			}
		}
	}
}
