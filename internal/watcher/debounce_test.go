package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain collects deliveries until nothing arrives for quiet.
func drain(d *debouncer, quiet time.Duration) []string {
	var got []string
	for {
		select {
		case p := <-d.ready:
			got = append(got, p)
		case <-time.After(quiet):
			return got
		}
	}
}

func TestDebouncer_BurstDeliversOnce(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(20*time.Millisecond, done)

	for i := 0; i < 10; i++ {
		d.touch("a.txt")
	}
	d.touch("b.txt")

	got := drain(d, 200*time.Millisecond)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, got)
}

func TestDebouncer_TouchAfterFireWhileQueued(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(10*time.Millisecond, done)

	d.touch("a.txt")
	// Let the timer fire and queue the path without receiving it.
	require.Eventually(t, func() bool { return len(d.ready) == 1 }, time.Second, 5*time.Millisecond)

	d.touch("a.txt")
	d.touch("a.txt")

	got := drain(d, 200*time.Millisecond)
	assert.Equal(t, []string{"a.txt", "a.txt"}, got)

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Empty(t, d.pending)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(50*time.Millisecond, done)

	d.touch("a.txt")
	d.stop()

	assert.Empty(t, drain(d, 150*time.Millisecond))
}
