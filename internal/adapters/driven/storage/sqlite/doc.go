// Package sqlite provides a unified SQLite-based implementation of the
// veritas persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It implements three stores over one database connection:
//
//   - BlobStore: raw uploaded documents keyed by stored name and digest
//   - CorpusRepository: append-only corpus entries with optional embeddings
//   - ReportStore: aggregate reports as JSON documents
//
// # Schema
//
// The schema is managed through versioned migrations in migrations/. Each
// migration is a pair of .up.sql and .down.sql files; applied versions are
// recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.veritas/veritas.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode with a
// busy timeout.
package sqlite
