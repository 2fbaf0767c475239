package watcher

import (
	"sync"
	"time"
)

// debouncer delivers a path on ready once it has been quiet for settle.
// A touch after the path's timer fired starts a new timer, so every
// settled burst is delivered exactly once.
type debouncer struct {
	settle  time.Duration
	ready   chan string
	done    <-chan struct{}
	mu      sync.Mutex
	pending map[string]*time.Timer
}

func newDebouncer(settle time.Duration, done <-chan struct{}) *debouncer {
	return &debouncer{
		settle:  settle,
		ready:   make(chan string, 16),
		done:    done,
		pending: make(map[string]*time.Timer),
	}
}

// touch records activity on path.
func (d *debouncer) touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[path]; ok && t.Stop() {
		t.Reset(d.settle)
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d.settle, func() {
		d.mu.Lock()
		current := d.pending[path] == t
		if current {
			delete(d.pending, path)
		}
		d.mu.Unlock()
		if !current {
			return
		}
		select {
		case d.ready <- path:
		case <-d.done:
		}
	})
	d.pending[path] = t
}

// stop cancels every pending timer.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.pending {
		t.Stop()
		delete(d.pending, path)
	}
}
