package scoring

// WorkerState is scratch memory owned by exactly one pool worker.
// Backends may use it freely; it is never shared between goroutines.
type WorkerState struct {
	tokens  []string
	scratch []string
	seen    map[string]struct{}
}

// NewWorkerState allocates the scratch memory for one worker.
func NewWorkerState() *WorkerState {
	return &WorkerState{
		tokens:  make([]string, 0, 256),
		scratch: make([]string, 0, 64),
		seen:    make(map[string]struct{}, 256),
	}
}
