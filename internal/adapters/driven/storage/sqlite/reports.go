package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driven"
)

// reportStore implements driven.ReportStore.
type reportStore struct {
	store *Store
}

var _ driven.ReportStore = (*reportStore)(nil)

// SaveReport stores or replaces a report.
func (s *reportStore) SaveReport(ctx context.Context, report *domain.AggregateReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO reports (id, kind, document_digest, stored_name, percentage, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			document_digest = excluded.document_digest,
			stored_name = excluded.stored_name,
			percentage = excluded.percentage,
			body = excluded.body
	`, report.ID, string(report.Kind), report.DocumentDigest, report.StoredName,
		report.Percentage, string(body), report.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// GetReport retrieves a report by ID.
func (s *reportStore) GetReport(ctx context.Context, id string) (*domain.AggregateReport, error) {
	var body string
	err := s.store.db.QueryRowContext(ctx, "SELECT body FROM reports WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying report: %w", err)
	}

	var report domain.AggregateReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("unmarshalling report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns summaries newest first, filtered by digest when set.
func (s *reportStore) ListReports(ctx context.Context, digest string) ([]domain.ReportSummary, error) {
	query := `SELECT id, kind, document_digest, stored_name, percentage, created_at FROM reports`
	var args []any
	if digest != "" {
		query += ` WHERE document_digest = ?`
		args = append(args, digest)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var out []domain.ReportSummary
	for rows.Next() {
		var r domain.ReportSummary
		var kind string
		if err := rows.Scan(&r.ID, &kind, &r.DocumentDigest, &r.StoredName, &r.Percentage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		r.Kind = domain.PipelineKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}
