// Package sqlite provides a SQLite-backed document catalogue and vector
// store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share one database:
//
//   - DocumentStore: the per-tenant catalogue of ingested documents
//   - VectorStore: chunk embeddings keyed by (namespace, id), searched by
//     exhaustive cosine similarity
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-kb/data/kb.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
