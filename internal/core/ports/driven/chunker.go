package driven

import "github.com/custodia-labs/sercha-kb/internal/core/domain"

// Chunker splits document text into ordered, overlapping chunks.
type Chunker interface {
	// Chunk segments text for the given document. Empty text yields no chunks.
	Chunk(documentID, text string) []domain.Chunk
}
