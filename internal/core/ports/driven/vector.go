package driven

import (
	"context"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// VectorStore provides namespaced vector storage and cosine similarity search.
//
// A namespace is a tenant id. Reads and writes never cross namespaces.
type VectorStore interface {
	// Upsert writes records into the namespace. Re-upserting an id replaces it.
	// Records carry a vector, or raw text when the store embeds server-side.
	Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error

	// Query returns at most topK matches from the namespace, sorted by
	// descending cosine similarity. An empty namespace yields no matches.
	Query(ctx context.Context, namespace string, query domain.VectorQuery, topK int) ([]domain.VectorMatch, error)

	// Dimensions returns the configured vector width, or zero if adopted per namespace.
	Dimensions() int

	// Ping validates the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
