// Package identity assigns every uploaded document a content digest and a
// unique stored name.
//
// Identical content always resolves to the name it was first stored under.
// A new document whose filename is taken gets the smallest free "-vN"
// suffix before its extension, so nothing is ever overwritten.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// DigestPrefix prefixes every content digest.
const DigestPrefix = "sha256:"

// maxVersions bounds the suffix search.
const maxVersions = 10000

// Digest returns the content digest "sha256:<hex>".
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return DigestPrefix + hex.EncodeToString(sum[:])
}

// Resolver resolves and stores document identities. Resolution and storage
// run under one mutex so concurrent uploads never claim the same name.
type Resolver struct {
	mu    sync.Mutex
	store driven.BlobStore
	now   func() time.Time
}

// New creates a resolver over store.
func New(store driven.BlobStore) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Resolve computes the identity of content and stores it when it is new.
// When storage fails the returned identity is still usable, with Stored
// false, and the error is returned alongside it.
func (r *Resolver) Resolve(ctx context.Context, filename, contentType string, content []byte) (*domain.Identity, error) {
	digest := Digest(content)
	filename = cleanName(filename)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.FindByDigest(ctx, digest)
	switch {
	case err == nil:
		return &domain.Identity{
			Digest:     digest,
			StoredName: existing.Name,
			Duplicate:  true,
			Stored:     true,
		}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return &domain.Identity{Digest: digest, StoredName: filename},
			fmt.Errorf("look up digest: %w", err)
	}

	name, err := r.freeName(ctx, filename)
	if err != nil {
		return &domain.Identity{Digest: digest, StoredName: filename}, err
	}

	id := &domain.Identity{
		Digest:     digest,
		StoredName: name,
		Renamed:    name != filename,
	}
	blob := domain.StoredBlob{
		Name:      name,
		Digest:    digest,
		MIMEType:  contentType,
		Size:      int64(len(content)),
		CreatedAt: r.now(),
	}
	if err := r.store.Put(ctx, blob, content); err != nil {
		return id, fmt.Errorf("store %q: %w", name, err)
	}
	id.Stored = true
	return id, nil
}

// freeName returns filename, or the first "-vN" variant not yet taken.
func (r *Resolver) freeName(ctx context.Context, filename string) (string, error) {
	taken, err := r.store.Exists(ctx, filename)
	if err != nil {
		return "", fmt.Errorf("check name %q: %w", filename, err)
	}
	if !taken {
		return filename, nil
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for v := 1; v <= maxVersions; v++ {
		candidate := fmt.Sprintf("%s-v%d%s", base, v, ext)
		taken, err := r.store.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check name %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %q: %w", filename, domain.ErrAlreadyExists)
}

// cleanName strips directories so stored names are flat.
func cleanName(filename string) string {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "document"
	}
	return name
}
