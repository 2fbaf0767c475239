package driven

import (
	"context"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// BlobStore persists raw uploaded documents.
// Names are unique; at most one blob exists per content digest.
type BlobStore interface {
	// Put stores content under name. It fails with domain.ErrAlreadyExists if
	// the name or the digest is already taken. Existing blobs are never overwritten.
	Put(ctx context.Context, blob domain.StoredBlob, content []byte) error

	// Get returns the blob's metadata and content.
	// Returns domain.ErrNotFound if the name is unknown.
	Get(ctx context.Context, name string) (*domain.StoredBlob, []byte, error)

	// FindByDigest returns the blob with the given digest.
	// Returns domain.ErrNotFound if no blob has that digest.
	FindByDigest(ctx context.Context, digest string) (*domain.StoredBlob, error)

	// Exists reports whether a blob is stored under name.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns all blobs ordered by creation time.
	List(ctx context.Context) ([]domain.StoredBlob, error)
}
