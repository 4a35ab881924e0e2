// Package vectorstore holds helpers shared by the vector store adapters:
// cosine scoring, result ranking, and dimension checks.
//
// Backends live in subpackages (memory, qdrant, redis, pinecone); the
// SQLite backend shares the catalogue database and lives in
// storage/sqlite.
package vectorstore
