package domain

// RecordMetadata mirrors a Chunk plus the owning document's filename and tenant.
type RecordMetadata struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
	TenantID   string `json:"tenant_id"`
}

// VectorRecord is the persisted unit in a vector store.
//
// Vector is nil when the store embeds server-side; Text then carries the
// content to be embedded by the provider.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata RecordMetadata
}

// VectorQuery is a nearest-neighbour query. Exactly one of Vector or Text
// is used: Text only when the store embeds server-side.
type VectorQuery struct {
	Vector []float32
	Text   string
}

// IsText reports whether the query defers vectorisation to the store.
func (q VectorQuery) IsText() bool {
	return q.Vector == nil
}

// VectorMatch is a single store hit with its cosine similarity.
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata RecordMetadata
}
