package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusRepository = (*CorpusStore)(nil)

// CorpusStore is an in-memory implementation of driven.CorpusRepository.
type CorpusStore struct {
	mu      sync.RWMutex
	entries []domain.CorpusEntry
}

// NewCorpusStore creates a new in-memory corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{}
}

// SaveEntry appends an entry.
func (s *CorpusStore) SaveEntry(_ context.Context, entry *domain.CorpusEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *entry
	e.Texts = append([]string(nil), entry.Texts...)
	e.Embeddings = append([][]float32(nil), entry.Embeddings...)
	s.entries = append(s.entries, e)
	return nil
}

// ListEntries returns the entries of one kind in insertion order.
func (s *CorpusStore) ListEntries(_ context.Context, kind domain.PipelineKind) ([]domain.CorpusEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CorpusEntry
	for _, e := range s.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}
