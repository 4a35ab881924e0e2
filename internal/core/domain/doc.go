// Package domain defines the core business entities for the knowledge base.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded artifact owned by a tenant
//   - Chunk: A contiguous slice of a document's extracted text
//   - VectorRecord: The persisted unit written to a vector store
//   - SearchResult: A ranked projection of a record for one query
//   - Answer: A generated response with its source attributions
//
// # Tenants
//
// Every read and write is scoped to exactly one tenant ("assistant").
// The tenant id doubles as the vector store namespace.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
