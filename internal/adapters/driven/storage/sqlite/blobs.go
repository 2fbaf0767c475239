package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// blobStore implements driven.BlobStore.
type blobStore struct {
	store *Store
}

var _ driven.BlobStore = (*blobStore)(nil)

// Put stores a blob. Name and digest are both unique; nothing is overwritten.
func (s *blobStore) Put(ctx context.Context, blob domain.StoredBlob, content []byte) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO blobs (name, digest, mime_type, size, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, blob.Name, blob.Digest, blob.MIMEType, blob.Size, content, blob.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return fmt.Errorf("blob %q: %w", blob.Name, domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("saving blob: %w", err)
	}
	return nil
}

// Get retrieves a blob and its content by name.
func (s *blobStore) Get(ctx context.Context, name string) (*domain.StoredBlob, []byte, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, digest, mime_type, size, created_at, content FROM blobs WHERE name = ?
	`, name)

	var blob domain.StoredBlob
	var content []byte
	if err := row.Scan(&blob.Name, &blob.Digest, &blob.MIMEType, &blob.Size, &blob.CreatedAt, &content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("scanning blob: %w", err)
	}
	return &blob, content, nil
}

// FindByDigest retrieves blob metadata by content digest.
func (s *blobStore) FindByDigest(ctx context.Context, digest string) (*domain.StoredBlob, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, digest, mime_type, size, created_at FROM blobs WHERE digest = ?
	`, digest)

	blob, err := scanBlob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return blob, err
}

// Exists reports whether a blob is stored under name.
func (s *blobStore) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM blobs WHERE name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking blob: %w", err)
	}
	return n > 0, nil
}

// List returns blob metadata in insertion order.
func (s *blobStore) List(ctx context.Context) ([]domain.StoredBlob, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, digest, mime_type, size, created_at FROM blobs ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying blobs: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredBlob
	for rows.Next() {
		blob, err := scanBlob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *blob)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBlob(row scanner) (*domain.StoredBlob, error) {
	var blob domain.StoredBlob
	if err := row.Scan(&blob.Name, &blob.Digest, &blob.MIMEType, &blob.Size, &blob.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning blob: %w", err)
	}
	return &blob, nil
}
