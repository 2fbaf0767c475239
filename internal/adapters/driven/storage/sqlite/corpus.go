package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// corpusRepository implements driven.CorpusRepository.
type corpusRepository struct {
	store *Store
}

var _ driven.CorpusRepository = (*corpusRepository)(nil)

// SaveEntry appends an entry and its embeddings in one transaction.
func (s *corpusRepository) SaveEntry(ctx context.Context, entry *domain.CorpusEntry) error {
	texts, err := json.Marshal(entry.Texts)
	if err != nil {
		return fmt.Errorf("marshalling texts: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO corpus_entries (id, kind, source, texts, created_at) VALUES (?, ?, ?, ?, ?)
	`, entry.ID, string(entry.Kind), entry.Source, string(texts), entry.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return fmt.Errorf("corpus entry %s: %w", entry.ID, domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("saving corpus entry: %w", err)
	}

	if entry.HasEmbeddings() {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO corpus_embeddings (entry_id, position, vector) VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing embedding insert: %w", err)
		}
		defer stmt.Close()
		for i, vec := range entry.Embeddings {
			if _, err := stmt.ExecContext(ctx, entry.ID, i, float32SliceToBytes(vec)); err != nil {
				return fmt.Errorf("saving embedding %d: %w", i, err)
			}
		}
	}

	return tx.Commit()
}

// ListEntries returns the entries of one kind in insertion order.
func (s *corpusRepository) ListEntries(ctx context.Context, kind domain.PipelineKind) ([]domain.CorpusEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, kind, source, texts, created_at FROM corpus_entries WHERE kind = ? ORDER BY seq
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying corpus entries: %w", err)
	}

	var entries []domain.CorpusEntry
	index := make(map[string]int)
	for rows.Next() {
		var e domain.CorpusEntry
		var kindStr, texts string
		if err := rows.Scan(&e.ID, &kindStr, &e.Source, &texts, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning corpus entry: %w", err)
		}
		e.Kind = domain.PipelineKind(kindStr)
		if err := json.Unmarshal([]byte(texts), &e.Texts); err != nil {
			rows.Close()
			return nil, fmt.Errorf("unmarshalling texts of %s: %w", e.ID, err)
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := s.attachEmbeddings(ctx, kind, entries, index); err != nil {
		return nil, err
	}
	return entries, nil
}

// attachEmbeddings loads vectors for entries. An entry whose vector count
// does not match its texts keeps none.
func (s *corpusRepository) attachEmbeddings(
	ctx context.Context,
	kind domain.PipelineKind,
	entries []domain.CorpusEntry,
	index map[string]int,
) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT e.entry_id, e.position, e.vector
		FROM corpus_embeddings e JOIN corpus_entries c ON c.id = e.entry_id
		WHERE c.kind = ?
		ORDER BY e.entry_id, e.position
	`, string(kind))
	if err != nil {
		return fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var pos int
		var blob []byte
		if err := rows.Scan(&id, &pos, &blob); err != nil {
			return fmt.Errorf("scanning embedding: %w", err)
		}
		i, ok := index[id]
		if !ok || pos != len(entries[i].Embeddings) {
			continue
		}
		entries[i].Embeddings = append(entries[i].Embeddings, bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range entries {
		if len(entries[i].Embeddings) > 0 && !entries[i].HasEmbeddings() {
			entries[i].Embeddings = nil
		}
	}
	return nil
}
