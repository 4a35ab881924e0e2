package driving

import (
	"context"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// IngestService turns uploaded documents into stored, searchable chunks.
type IngestService interface {
	// Ingest extracts, chunks, embeds and stores a document for a tenant.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
}

// DocumentService reads the catalogue of ingested documents.
type DocumentService interface {
	// List returns a tenant's documents, newest first.
	List(ctx context.Context, tenantID string) ([]domain.Document, error)

	// Get returns one of the tenant's documents. A document owned by
	// another tenant is reported as domain.ErrNotFound.
	Get(ctx context.Context, tenantID, id string) (*domain.Document, error)
}

// RetrievalService finds the chunks most relevant to a query.
type RetrievalService interface {
	// Retrieve returns at most topK results for the tenant, in store ranking order.
	Retrieve(ctx context.Context, query, tenantID string, topK int) ([]domain.SearchResult, error)
}

// AnswerService produces answers grounded in retrieved chunks.
type AnswerService interface {
	// Answer retrieves context for the tenant and asks the language model.
	Answer(ctx context.Context, req domain.AnswerRequest) (*domain.Answer, error)
}
