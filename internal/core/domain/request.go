package domain

// IngestStatusProcessed is reported once a document's chunks are stored.
const IngestStatusProcessed = "processed"

// IngestRequest describes one uploaded document.
type IngestRequest struct {
	TenantID    string
	Filename    string
	ContentType string
	Data        []byte
}

// IngestResult summarises a completed ingestion.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Chunks     int    `json:"chunks"`
}

// AnswerRequest asks for a grounded answer for one tenant.
type AnswerRequest struct {
	// Query is the user's question.
	Query string

	// TenantID scopes retrieval.
	TenantID string

	// History holds prior conversation turns, oldest first.
	History []ChatMessage

	// SystemPrompt overrides the default system prompt when non-empty.
	SystemPrompt string
}
