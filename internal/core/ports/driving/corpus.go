package driving

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// CorpusService manages the comparison corpora outside of evaluations.
type CorpusService interface {
	// List returns the entries of a pipeline's corpus, oldest first.
	List(ctx context.Context, kind domain.PipelineKind) ([]domain.CorpusEntry, error)

	// Add extracts and segments a document and appends it to a corpus
	// without evaluating it.
	Add(ctx context.Context, kind domain.PipelineKind, raw *domain.RawDocument) (*domain.CorpusEntry, error)

	// Rebuild appends every stored raw document not yet present in the
	// corpus, identified by source name. Returns the number of entries added.
	Rebuild(ctx context.Context, kind domain.PipelineKind) (int, error)
}
