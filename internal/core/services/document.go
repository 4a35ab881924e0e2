package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService provides read access to the document catalogue.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// List returns a tenant's documents, newest first.
func (s *DocumentService) List(ctx context.Context, tenantID string) ([]domain.Document, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	if s.docStore == nil {
		return nil, errors.New("document store not configured")
	}
	return s.docStore.ListDocuments(ctx, tenantID)
}

// Get returns a tenant's document by ID.
func (s *DocumentService) Get(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	if s.docStore == nil {
		return nil, errors.New("document store not configured")
	}

	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.TenantID != tenantID {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return doc, nil
}
