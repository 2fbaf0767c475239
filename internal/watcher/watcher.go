// Package watcher reports documents created or modified under a directory.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/veritas-cli/internal/logger"
)

// DefaultSettle is how long a file must stay unchanged before it is reported.
const DefaultSettle = 500 * time.Millisecond

// Watcher watches a directory tree for documents with supported extensions.
type Watcher struct {
	root       string
	extensions map[string]bool
	settle     time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets how long a file must be quiet before it is reported.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// New creates a watcher for root. Extensions are matched case-insensitively
// and include the leading dot. An empty list accepts every file.
func New(root string, extensions []string, opts ...Option) *Watcher {
	w := &Watcher{
		root:       root,
		extensions: make(map[string]bool, len(extensions)),
		settle:     DefaultSettle,
	}
	for _, ext := range extensions {
		w.extensions[strings.ToLower(ext)] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Existing returns the supported files already under root, in walk order.
func (w *Watcher) Existing() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.accepts(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", w.root, err)
	}
	return paths, nil
}

// Watch reports paths of supported files as they are created or written.
// Both channels are closed when ctx is cancelled or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, <-chan error) {
	paths := make(chan string)
	errs := make(chan error, 1)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		errs <- fmt.Errorf("creating watcher: %w", err)
		close(paths)
		close(errs)
		return paths, errs
	}

	if err := w.addTree(fsw, w.root); err != nil {
		_ = fsw.Close()
		errs <- err
		close(paths)
		close(errs)
		return paths, errs
	}

	go w.loop(ctx, fsw, paths, errs)
	return paths, errs
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, paths chan<- string, errs chan<- error) {
	defer close(errs)
	defer close(paths)
	defer fsw.Close()

	deb := newDebouncer(w.settle, ctx.Done())
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case path := <-deb.ready:
			select {
			case paths <- path:
			case <-ctx.Done():
				return
			}

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.isNewDir(event) {
				if err := w.addTree(fsw, event.Name); err != nil {
					logger.Warn("watching new directory failed", "path", event.Name, "error", err)
				}
				continue
			}
			path, ok := w.handleEvent(event)
			if !ok {
				continue
			}
			deb.touch(path)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			select {
			case errs <- err:
			default:
				logger.Warn("watcher error dropped", "error", err)
			}
		}
	}
}

// handleEvent returns the path of a supported file that was created or written.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if w.hidden(event.Name) || !w.accepts(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) isNewDir(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) || w.hidden(event.Name) {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) accepts(path string) bool {
	if isHidden(filepath.Base(path)) {
		return false
	}
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// hidden reports whether path is hidden relative to the watched root.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return isHidden(filepath.Base(path))
	}
	return isHidden(rel)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
