package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-kb/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService turns a query into tenant-scoped, ranked search results.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(embedder driven.EmbeddingService, store driven.VectorStore) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		store:    store,
	}
}

// Retrieve returns at most topK results in the store's similarity order.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query, tenantID string, topK int,
) ([]domain.SearchResult, error) {
	logger.Section("Retrieve")
	logger.Debug("Query: %q, tenant: %s, top_k: %d", query, tenantID, topK)

	if err := domain.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK < 1 || topK > domain.MaxTopK {
		return nil, fmt.Errorf("%w: top_k must be between 1 and %d, got %d",
			domain.ErrInvalidInput, domain.MaxTopK, topK)
	}

	q, err := s.representation(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.Query(ctx, tenantID, q, topK)
	if err != nil {
		logger.Warn("Vector query failed: %v", err)
		return nil, fmt.Errorf("query store: %w", err)
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	logger.Debug("Store returned %d matches", len(matches))

	results := make([]domain.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = domain.NewSearchResult(m)
	}
	return results, nil
}

// representation embeds the query, or passes it through as text when the
// store embeds server-side.
func (s *RetrievalService) representation(ctx context.Context, query string) (domain.VectorQuery, error) {
	if s.embedder.Integrated() {
		logger.Debug("Deferring query embedding to the store")
		return domain.VectorQuery{Text: query}, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return domain.VectorQuery{}, fmt.Errorf("embed query: %w", err)
	}
	return domain.VectorQuery{Vector: vector}, nil
}
