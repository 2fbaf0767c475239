package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu       sync.RWMutex
	blobs    map[string]domain.StoredBlob
	content  map[string][]byte
	byDigest map[string]string
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs:    make(map[string]domain.StoredBlob),
		content:  make(map[string][]byte),
		byDigest: make(map[string]string),
	}
}

// Put stores content under the blob's name.
func (s *BlobStore) Put(_ context.Context, blob domain.StoredBlob, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[blob.Name]; ok {
		return fmt.Errorf("blob %q: %w", blob.Name, domain.ErrAlreadyExists)
	}
	if _, ok := s.byDigest[blob.Digest]; ok {
		return fmt.Errorf("digest %s: %w", blob.Digest, domain.ErrAlreadyExists)
	}
	s.blobs[blob.Name] = blob
	s.content[blob.Name] = append([]byte(nil), content...)
	s.byDigest[blob.Digest] = blob.Name
	return nil
}

// Get retrieves a blob by name.
func (s *BlobStore) Get(_ context.Context, name string) (*domain.StoredBlob, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[name]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	return &blob, append([]byte(nil), s.content[name]...), nil
}

// FindByDigest retrieves a blob by content digest.
func (s *BlobStore) FindByDigest(_ context.Context, digest string) (*domain.StoredBlob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.byDigest[digest]
	if !ok {
		return nil, domain.ErrNotFound
	}
	blob := s.blobs[name]
	return &blob, nil
}

// Exists reports whether a blob is stored under name.
func (s *BlobStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[name]
	return ok, nil
}

// List returns all blobs ordered by creation time, then name.
func (s *BlobStore) List(_ context.Context) ([]domain.StoredBlob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StoredBlob, 0, len(s.blobs))
	for _, b := range s.blobs {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
