package domain

import (
	"fmt"
	"time"
)

// Document is an uploaded artifact. It is immutable once created.
type Document struct {
	// ID is the generated unique identifier.
	ID string `json:"document_id"`

	// Filename is the original upload name.
	Filename string `json:"filename"`

	// ContentType is the declared media type of the raw bytes.
	ContentType string `json:"content_type"`

	// TenantID is the owning tenant.
	TenantID string `json:"assistant_id"`

	// Size is the raw byte length.
	Size int64 `json:"size"`

	// ChunkCount is the number of chunks written to the vector store.
	ChunkCount int `json:"chunks"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is a contiguous slice of a document's extracted text.
//
// Start and End are character offsets into the source text. End is the
// upper bound of the window before sentence-boundary trimming, so it can
// exceed the text length on the final chunk; Content is trimmed of
// surrounding whitespace.
type Chunk struct {
	DocumentID string `json:"document_id"`
	Index      int    `json:"chunk_index"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Content    string `json:"text"`
}

// RecordID derives the vector record id for a document chunk.
func RecordID(documentID string, index int) string {
	return fmt.Sprintf("%s-chunk-%d", documentID, index)
}
