package scoring

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MaxWorkers caps every scoring pool.
const MaxWorkers = 8

// Pool runs jobs on a fixed set of workers. Each worker owns the state
// returned by the constructor's newState for its whole lifetime.
type Pool struct {
	size     int
	newState func() *WorkerState
}

// NewPool creates a pool of size workers, capped at MaxWorkers.
// A non-positive size means available parallelism.
func NewPool(size int, newState func() *WorkerState) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	if size > MaxWorkers {
		size = MaxWorkers
	}
	if newState == nil {
		newState = NewWorkerState
	}
	return &Pool{size: size, newState: newState}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Run calls job once for every index in [0, n) and returns when all calls
// have finished. Jobs not yet started when ctx is done are skipped, and Run
// returns ctx's error.
func (p *Pool) Run(ctx context.Context, n int, job func(state *WorkerState, i int)) error {
	if n == 0 {
		return nil
	}

	workers := p.size
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		state := p.newState()
		g.Go(func() error {
			for i := range jobs {
				job(state, i)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}
