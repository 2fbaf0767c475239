package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService provides access to stored raw documents.
type DocumentService struct {
	blobs driven.BlobStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(blobs driven.BlobStore) *DocumentService {
	return &DocumentService{blobs: blobs}
}

// List returns all stored documents, oldest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.StoredBlob, error) {
	if s.blobs == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.blobs.List(ctx)
}

// Get returns a stored document's metadata and bytes.
func (s *DocumentService) Get(ctx context.Context, name string) (*domain.StoredBlob, []byte, error) {
	if s.blobs == nil {
		return nil, nil, domain.ErrNotImplemented
	}
	if name == "" {
		return nil, nil, fmt.Errorf("document name required: %w", domain.ErrInvalidInput)
	}
	return s.blobs.Get(ctx, name)
}
