// Package memory provides an in-process vector store with brute-force
// cosine search. Contents are lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps records per namespace behind a single RWMutex.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
	dimensions int
}

type namespace struct {
	width   int
	records map[string]domain.VectorRecord
}

// NewStore creates an empty store. A dimensions value of 0 adopts each
// namespace's width from its first write.
func NewStore(dimensions int) *Store {
	return &Store{
		namespaces: make(map[string]*namespace),
		dimensions: dimensions,
	}
}

// Upsert inserts or replaces records. The batch is validated before any
// record is written, so it applies entirely or not at all.
func (s *Store) Upsert(_ context.Context, ns string, records []domain.VectorRecord) error {
	width, err := vectorstore.BatchWidth(records)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	space := s.namespaces[ns]
	expected := s.dimensions
	if expected == 0 && space != nil {
		expected = space.width
	}
	if err := vectorstore.CheckWidth(expected, width); err != nil {
		return err
	}

	if space == nil {
		space = &namespace{width: width, records: make(map[string]domain.VectorRecord)}
		s.namespaces[ns] = space
	}
	for _, r := range records {
		r.Vector = append([]float32(nil), r.Vector...)
		space.records[r.ID] = r
	}
	return nil
}

// Query scores every record in the namespace and returns the best topK.
func (s *Store) Query(
	_ context.Context, ns string, q domain.VectorQuery, topK int,
) ([]domain.VectorMatch, error) {
	if err := vectorstore.RequireVector(q); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	space := s.namespaces[ns]
	if space == nil || len(space.records) == 0 {
		return []domain.VectorMatch{}, nil
	}
	if err := vectorstore.CheckWidth(space.width, len(q.Vector)); err != nil {
		return nil, err
	}

	matches := make([]domain.VectorMatch, 0, len(space.records))
	for id := range space.records {
		r := space.records[id]
		matches = append(matches, domain.VectorMatch{
			ID:       r.ID,
			Score:    vectorstore.Cosine(q.Vector, r.Vector),
			Metadata: r.Metadata,
		})
	}
	return vectorstore.Rank(matches, topK), nil
}

// Count returns the number of records in a namespace.
func (s *Store) Count(ns string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if space := s.namespaces[ns]; space != nil {
		return len(space.records)
	}
	return 0
}

// Dimensions returns the configured width, or 0 when adopted per namespace.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
