// Package pinecone provides a vector store backed by a Pinecone index's
// REST data plane.
//
// All tenants share one index host. Each tenant writes to the namespace
// assistant-{tenant} and every record carries a tenant_id metadata field
// that queries filter on. Records without vectors go through the
// integrated-embedding records API, where Pinecone embeds the text field.
package pinecone

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	APIVersion     = "2025-01"
)

// Config holds configuration for the Pinecone store.
type Config struct {
	// Host is the index host URL, e.g. https://kb-abc123.svc.pinecone.io (required).
	Host string

	// APIKey is the Pinecone API key (required).
	APIKey string

	// Dimensions fixes the vector width. Zero reads it from the index.
	Dimensions int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store implements driven.VectorStore against Pinecone.
type Store struct {
	client     *http.Client
	host       string
	apiKey     string
	dimensions int

	mu    sync.Mutex
	width int // index dimension once known
}

type vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
}

type upsertRequest struct {
	Vectors   []vector `json:"vectors"`
	Namespace string   `json:"namespace"`
}

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Namespace       string         `json:"namespace"`
	Filter          map[string]any `json:"filter"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string   `json:"id"`
		Score    float64  `json:"score"`
		Metadata metadata `json:"metadata"`
	} `json:"matches"`
}

type searchRequest struct {
	Query struct {
		Inputs map[string]string `json:"inputs"`
		TopK   int               `json:"top_k"`
		Filter map[string]any    `json:"filter"`
	} `json:"query"`
	Fields []string `json:"fields"`
}

type searchResponse struct {
	Result struct {
		Hits []struct {
			ID     string   `json:"_id"`
			Score  float64  `json:"_score"`
			Fields metadata `json:"fields"`
		} `json:"hits"`
	} `json:"result"`
}

// metadata is the per-record payload. Pinecone stores numbers as floats.
type metadata struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex float64 `json:"chunk_index"`
	Text       string  `json:"text"`
	TenantID   string  `json:"tenant_id"`
}

func (m metadata) toDomain() domain.RecordMetadata {
	return domain.RecordMetadata{
		DocumentID: m.DocumentID,
		Filename:   m.Filename,
		ChunkIndex: int(m.ChunkIndex),
		Text:       m.Text,
		TenantID:   m.TenantID,
	}
}

type statsResponse struct {
	Dimension int `json:"dimension"`
}

// NewStore creates a Pinecone store. No request is made until first use.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: pinecone: index host is required", domain.ErrConfiguration)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: pinecone: API key is required", domain.ErrConfiguration)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	host := strings.TrimRight(cfg.Host, "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		host:       host,
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
		width:      cfg.Dimensions,
	}, nil
}

// Upsert writes a batch. A batch must be all vectors or all text.
func (s *Store) Upsert(ctx context.Context, ns string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	textual := records[0].Vector == nil
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record without id", domain.ErrInvalidInput)
		}
		if (r.Vector == nil) != textual {
			return fmt.Errorf("%w: batch mixes text and vector records", domain.ErrInvalidInput)
		}
	}
	if textual {
		return s.upsertRecords(ctx, ns, records)
	}

	width, err := vectorstore.BatchWidth(records)
	if err != nil {
		return err
	}
	if err := s.checkWidth(ctx, width); err != nil {
		return err
	}

	req := upsertRequest{
		Vectors:   make([]vector, len(records)),
		Namespace: vectorstore.CollectionName(ns),
	}
	for i, r := range records {
		req.Vectors[i] = vector{ID: r.ID, Values: r.Vector, Metadata: recordFields(ns, r)}
	}
	return s.do(ctx, http.MethodPost, "/vectors/upsert", "application/json", mustJSON(req), nil)
}

// upsertRecords sends text records as NDJSON for server-side embedding.
func (s *Store) upsertRecords(ctx context.Context, ns string, records []domain.VectorRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		fields := recordFields(ns, r)
		fields["_id"] = r.ID
		if r.Text != "" {
			fields["text"] = r.Text
		}
		if err := enc.Encode(fields); err != nil {
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}
	}
	path := "/records/namespaces/" + url.PathEscape(vectorstore.CollectionName(ns)) + "/upsert"
	return s.do(ctx, http.MethodPost, path, "application/x-ndjson", buf.Bytes(), nil)
}

// Query searches the tenant's namespace. Text queries use the integrated
// search endpoint.
func (s *Store) Query(
	ctx context.Context, ns string, q domain.VectorQuery, topK int,
) ([]domain.VectorMatch, error) {
	filter := map[string]any{"tenant_id": map[string]any{"$eq": ns}}

	if q.IsText() {
		return s.search(ctx, ns, q.Text, topK, filter)
	}
	if err := s.checkWidth(ctx, len(q.Vector)); err != nil {
		return nil, err
	}

	req := queryRequest{
		Vector:          q.Vector,
		TopK:            topK,
		Namespace:       vectorstore.CollectionName(ns),
		Filter:          filter,
		IncludeMetadata: true,
	}
	var resp queryResponse
	if err := s.do(ctx, http.MethodPost, "/query", "application/json", mustJSON(req), &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.VectorMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, domain.VectorMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata.toDomain()})
	}
	return vectorstore.Rank(matches, topK), nil
}

func (s *Store) search(
	ctx context.Context, ns, text string, topK int, filter map[string]any,
) ([]domain.VectorMatch, error) {
	var req searchRequest
	req.Query.Inputs = map[string]string{"text": text}
	req.Query.TopK = topK
	req.Query.Filter = filter
	req.Fields = []string{"document_id", "filename", "chunk_index", "text", "tenant_id"}

	path := "/records/namespaces/" + url.PathEscape(vectorstore.CollectionName(ns)) + "/search"
	var resp searchResponse
	if err := s.do(ctx, http.MethodPost, path, "application/json", mustJSON(req), &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.VectorMatch, 0, len(resp.Result.Hits))
	for _, h := range resp.Result.Hits {
		matches = append(matches, domain.VectorMatch{ID: h.ID, Score: h.Score, Metadata: h.Fields.toDomain()})
	}
	return vectorstore.Rank(matches, topK), nil
}

// checkWidth compares got with the index dimension, fetching it once
// from describe_index_stats when not configured.
func (s *Store) checkWidth(ctx context.Context, got int) error {
	s.mu.Lock()
	width := s.width
	s.mu.Unlock()

	if width == 0 {
		var stats statsResponse
		if err := s.do(ctx, http.MethodPost, "/describe_index_stats", "application/json", []byte("{}"), &stats); err != nil {
			return err
		}
		width = stats.Dimension
		s.mu.Lock()
		s.width = width
		s.mu.Unlock()
	}
	return vectorstore.CheckWidth(width, got)
}

func recordFields(ns string, r domain.VectorRecord) map[string]any {
	return map[string]any{
		"document_id": r.Metadata.DocumentID,
		"filename":    r.Metadata.Filename,
		"chunk_index": r.Metadata.ChunkIndex,
		"text":        r.Metadata.Text,
		"tenant_id":   ns,
	}
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("pinecone: marshal %T: %v", v, err))
	}
	return data
}

func (s *Store) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, s.host+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("X-Pinecone-API-Version", APIVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: pinecone: %w", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: pinecone: read response: %w", domain.ErrIndexUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: pinecone %s %s (status %d): %s",
			domain.ErrIndexUnavailable, method, path, resp.StatusCode, firstLine(respBody))
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: pinecone: decode response: %w", domain.ErrIndexUnavailable, err)
		}
	}
	return nil
}

func firstLine(b []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(b))
	if sc.Scan() {
		return sc.Text()
	}
	return ""
}

// Dimensions returns the configured width, or 0 when read from the index.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Ping checks the index host answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.do(ctx, http.MethodPost, "/describe_index_stats", "application/json", []byte("{}"), nil)
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
