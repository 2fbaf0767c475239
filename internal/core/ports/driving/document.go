package driving

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// DocumentService provides access to stored raw documents.
type DocumentService interface {
	// List returns all stored documents.
	List(ctx context.Context) ([]domain.StoredBlob, error)

	// Get returns a stored document's metadata and bytes.
	Get(ctx context.Context, name string) (*domain.StoredBlob, []byte, error)
}
