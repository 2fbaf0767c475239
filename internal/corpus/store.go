// Package corpus holds the in-memory comparison corpus of one pipeline.
//
// A Store owns an immutable Snapshot behind an atomic pointer. Readers take a
// snapshot at pipeline start and never block. Appends embed the new texts,
// then take a short exclusive section to rebuild the snapshot and its
// similarity index, and finally persist the entry on a best-effort basis.
package corpus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/logger"
)

// IndexFactory creates an empty vector index for the given dimension.
type IndexFactory func(dimension int) driven.VectorIndex

// Store is the corpus of one pipeline kind.
type Store struct {
	kind     domain.PipelineKind
	repo     driven.CorpusRepository
	embedder driven.EmbeddingService
	newIndex IndexFactory
	now      func() time.Time

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// Option configures a Store.
type Option func(*Store)

// WithRepository persists appended entries and enables Load.
func WithRepository(repo driven.CorpusRepository) Option {
	return func(s *Store) {
		s.repo = repo
	}
}

// WithEmbedder embeds appended texts so the snapshot carries a similarity index.
func WithEmbedder(embedder driven.EmbeddingService) Option {
	return func(s *Store) {
		s.embedder = embedder
	}
}

// WithIndexFactory sets how similarity indexes are built.
func WithIndexFactory(f IndexFactory) Option {
	return func(s *Store) {
		s.newIndex = f
	}
}

// WithClock overrides the entry timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty corpus for kind.
func NewStore(kind domain.PipelineKind, opts ...Option) *Store {
	s := &Store{kind: kind, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(build(context.Background(), kind, 0, nil, nil, s.newIndex))
	return s
}

// Kind returns the pipeline this corpus serves.
func (s *Store) Kind() domain.PipelineKind {
	return s.kind
}

// HasEmbedder reports whether appended entries are embedded.
func (s *Store) HasEmbedder() bool {
	return s.embedder != nil
}

// Embedder returns the embedding service, or nil.
func (s *Store) Embedder() driven.EmbeddingService {
	return s.embedder
}

// Load replaces the corpus with the entries held by the repository.
// Without a repository Load is a no-op.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	entries, err := s.repo.ListEntries(ctx, s.kind)
	if err != nil {
		return fmt.Errorf("load %s corpus: %w", s.kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	s.current.Store(build(ctx, s.kind, prev.version+1, entries, nil, s.newIndex))
	logger.Info("loaded %d %s corpus entries", len(entries), s.kind)
	return nil
}

// Snapshot returns the current immutable view of the corpus.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Append adds an entry built from texts. Texts are deduplicated by exact
// match; an entry with no texts left is rejected with domain.ErrInvalidInput.
// Embedding and persistence failures are logged and do not fail the append.
func (s *Store) Append(ctx context.Context, source string, texts []string) (*domain.CorpusEntry, error) {
	texts = domain.DedupTexts(texts)
	if len(texts) == 0 {
		return nil, fmt.Errorf("append to %s corpus: no texts: %w", s.kind, domain.ErrInvalidInput)
	}

	entry := domain.CorpusEntry{
		ID:        uuid.New().String(),
		Kind:      s.kind,
		Source:    source,
		Texts:     texts,
		CreatedAt: s.now(),
	}
	entry.Embeddings = s.embed(ctx, texts)

	s.mu.Lock()
	prev := s.current.Load()
	entries := make([]domain.CorpusEntry, len(prev.entries), len(prev.entries)+1)
	copy(entries, prev.entries)
	entries = append(entries, entry)
	s.current.Store(build(ctx, s.kind, prev.version+1, entries, prev, s.newIndex))
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveEntry(ctx, &entry); err != nil {
			logger.Warn("corpus entry not persisted", "kind", s.kind, "source", source, "err", err)
		}
	}

	return &entry, nil
}

// embed returns one vector per text, or nil when embeddings are unavailable.
func (s *Store) embed(ctx context.Context, texts []string) [][]float32 {
	if s.embedder == nil {
		return nil
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warn("corpus embedding failed, storing text only", "kind", s.kind, "err", err)
		return nil
	}
	if len(vectors) != len(texts) {
		logger.Warn("corpus embedding count mismatch, storing text only",
			"kind", s.kind, "texts", len(texts), "vectors", len(vectors))
		return nil
	}
	return vectors
}
