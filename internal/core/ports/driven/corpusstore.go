package driven

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// CorpusRepository persists corpus entries across process restarts.
// Entries are append-only; there is no update or delete.
type CorpusRepository interface {
	// SaveEntry appends an entry.
	SaveEntry(ctx context.Context, entry *domain.CorpusEntry) error

	// ListEntries returns all entries of a pipeline kind ordered by creation time.
	ListEntries(ctx context.Context, kind domain.PipelineKind) ([]domain.CorpusEntry, error)
}
