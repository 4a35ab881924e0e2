// Package integrated provides an embedding service that defers
// vectorisation to a vector store with server-side embedding.
package integrated

import (
	"context"

	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService computes nothing. Records and queries carry raw text
// and the store embeds it with its own hosted model.
type EmbeddingService struct {
	model string
}

// NewEmbeddingService creates an integrated embedder. The model name is
// informational; the store's index decides the actual model.
func NewEmbeddingService(model string) *EmbeddingService {
	return &EmbeddingService{model: model}
}

// Embed returns a nil vector.
func (s *EmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, nil
}

// EmbedBatch returns one nil vector per input.
func (s *EmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

// Dimensions returns 0; the width is owned by the store.
func (s *EmbeddingService) Dimensions() int {
	return 0
}

// ModelName returns the configured model name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Integrated returns true.
func (s *EmbeddingService) Integrated() bool {
	return true
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
