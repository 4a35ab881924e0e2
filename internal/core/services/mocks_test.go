package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding  []float32
	embedErr   error
	integrated bool
	short      bool // return one vector fewer than requested

	mu      sync.Mutex
	queries []string
	batches [][]string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.queries = append(m.queries, text)
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, texts)
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	n := len(texts)
	if m.short && n > 0 {
		n--
	}
	result := make([][]float32, n)
	for i := range result {
		if !m.integrated {
			result[i] = m.embedding
		}
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Integrated() bool {
	return m.integrated
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	matches   []domain.VectorMatch
	upsertErr error
	queryErr  error

	upserts    [][]domain.VectorRecord
	namespaces []string
	lastQuery  domain.VectorQuery
	lastTopK   int
}

func (m *mockVectorStore) Upsert(_ context.Context, namespace string, records []domain.VectorRecord) error {
	m.namespaces = append(m.namespaces, namespace)
	m.upserts = append(m.upserts, records)
	return m.upsertErr
}

func (m *mockVectorStore) Query(
	_ context.Context, namespace string, query domain.VectorQuery, topK int,
) ([]domain.VectorMatch, error) {
	m.namespaces = append(m.namespaces, namespace)
	m.lastQuery = query
	m.lastTopK = topK
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.matches, nil
}

func (m *mockVectorStore) Dimensions() int {
	return 0
}

func (m *mockVectorStore) Ping(_ context.Context) error {
	return nil
}

func (m *mockVectorStore) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	chatErr  error

	messages []domain.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLMService) Chat(
	_ context.Context, messages []domain.ChatMessage, opts driven.ChatOptions,
) (string, error) {
	m.messages = messages
	m.opts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockExtractorRegistry implements driven.ExtractorRegistry for testing.
type mockExtractorRegistry struct {
	text       string
	extractErr error
}

func (m *mockExtractorRegistry) Register(_ driven.Extractor) {}

func (m *mockExtractorRegistry) Extract(_ context.Context, data []byte, _ string) (string, error) {
	if m.extractErr != nil {
		return "", m.extractErr
	}
	if m.text != "" {
		return m.text, nil
	}
	return string(data), nil
}

func (m *mockExtractorRegistry) SupportedContentTypes() []string {
	return []string{"text/plain"}
}

// mockChunker splits on blank lines so tests control chunk counts exactly.
type mockChunker struct{}

func (mockChunker) Chunk(documentID, text string) []domain.Chunk {
	var chunks []domain.Chunk
	start := 0
	for i, part := range splitParagraphs(text) {
		chunks = append(chunks, domain.Chunk{
			DocumentID: documentID,
			Index:      i,
			Start:      start,
			End:        start + len(part),
			Content:    part,
		})
		start += len(part) + 2
	}
	return chunks
}

func splitParagraphs(text string) []string {
	var parts []string
	cur := ""
	for i := 0; i < len(text); i++ {
		if i+1 < len(text) && text[i] == '\n' && text[i+1] == '\n' {
			if cur != "" {
				parts = append(parts, cur)
			}
			cur = ""
			i++
			continue
		}
		cur += string(text[i])
	}
	if cur != "" {
		parts = append(parts, cur)
	}
	return parts
}

// mockDocumentStore implements driven.DocumentStore for testing.
type mockDocumentStore struct {
	docs    []domain.Document
	saveErr error
}

func (m *mockDocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *mockDocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentStore) ListDocuments(_ context.Context, tenantID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range m.docs {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	return out, nil
}

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	results []domain.SearchResult
	err     error

	query    string
	tenantID string
	topK     int
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context, query, tenantID string, topK int,
) ([]domain.SearchResult, error) {
	m.query, m.tenantID, m.topK = query, tenantID, topK
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func match(id, filename, text string, score float64) domain.VectorMatch {
	return domain.VectorMatch{
		ID:    id,
		Score: score,
		Metadata: domain.RecordMetadata{
			DocumentID: "doc-1",
			Filename:   filename,
			Text:       text,
			TenantID:   "acme",
		},
	}
}
