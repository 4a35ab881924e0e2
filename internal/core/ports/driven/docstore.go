package driven

import (
	"context"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// DocumentStore is the catalogue of ingested documents.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns a tenant's documents, newest first.
	ListDocuments(ctx context.Context, tenantID string) ([]domain.Document, error)
}
