// Package qdrant provides a vector store backed by Qdrant's REST API.
//
// Each namespace maps to its own collection, created on first write with
// cosine distance. Point ids are UUIDv5 digests of the record id since
// Qdrant accepts only UUIDs or integers; the original id travels in the
// payload.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 30 * time.Second
)

// pointNamespace seeds the UUIDv5 point ids.
var pointNamespace = uuid.MustParse("6f1c2a3e-4b5d-4e6f-8a9b-0c1d2e3f4a5b")

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant REST endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Dimensions fixes the vector width. Zero adopts it per collection.
	Dimensions int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store implements driven.VectorStore against Qdrant.
type Store struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	dimensions int

	mu     sync.Mutex
	widths map[string]int // collection name -> vector size, 0 when absent

	// createMu serialises collection creation within the process.
	createMu sync.Mutex
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
	Filter      filter    `json:"filter"`
}

type filter struct {
	Must []condition `json:"must"`
}

type condition struct {
	Key   string `json:"key"`
	Match struct {
		Value string `json:"value"`
	} `json:"match"`
}

type searchResponse struct {
	Result []struct {
		ID      any     `json:"id"`
		Score   float64 `json:"score"`
		Payload payload `json:"payload"`
	} `json:"result"`
}

type payload struct {
	RecordID   string `json:"record_id"`
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
	TenantID   string `json:"tenant_id"`
}

type collectionResponse struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// NewStore creates a Qdrant store. No request is made until first use.
func NewStore(cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
		widths:     make(map[string]int),
	}
}

// PointID derives the Qdrant point id for a record id.
func PointID(recordID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(recordID)).String()
}

// Upsert writes records into the namespace's collection, creating it if
// needed. Qdrant applies the batch per request, not transactionally.
func (s *Store) Upsert(ctx context.Context, ns string, records []domain.VectorRecord) error {
	width, err := vectorstore.BatchWidth(records)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if err := vectorstore.CheckWidth(s.dimensions, width); err != nil {
		return err
	}

	collection := vectorstore.CollectionName(ns)
	existing, err := s.ensureCollection(ctx, collection, width)
	if err != nil {
		return err
	}
	if err := vectorstore.CheckWidth(existing, width); err != nil {
		return err
	}

	points := make([]point, len(records))
	for i, r := range records {
		points[i] = point{
			ID:     PointID(r.ID),
			Vector: r.Vector,
			Payload: map[string]any{
				"record_id":   r.ID,
				"document_id": r.Metadata.DocumentID,
				"filename":    r.Metadata.Filename,
				"chunk_index": r.Metadata.ChunkIndex,
				"text":        r.Metadata.Text,
				"tenant_id":   ns,
			},
		}
	}

	_, err = s.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true",
		map[string]any{"points": points}, nil)
	return err
}

// Query searches the namespace's collection with a tenant_id filter.
func (s *Store) Query(
	ctx context.Context, ns string, q domain.VectorQuery, topK int,
) ([]domain.VectorMatch, error) {
	if err := vectorstore.RequireVector(q); err != nil {
		return nil, err
	}

	collection := vectorstore.CollectionName(ns)
	existing, err := s.collectionWidth(ctx, collection)
	if err != nil {
		return nil, err
	}
	if existing == 0 {
		return []domain.VectorMatch{}, nil
	}
	if err := vectorstore.CheckWidth(existing, len(q.Vector)); err != nil {
		return nil, err
	}

	req := searchRequest{
		Vector:      q.Vector,
		Limit:       topK,
		WithPayload: true,
	}
	c := condition{Key: "tenant_id"}
	c.Match.Value = ns
	req.Filter.Must = []condition{c}

	var resp searchResponse
	if _, err := s.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", req, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.VectorMatch, 0, len(resp.Result))
	for _, hit := range resp.Result {
		id := hit.Payload.RecordID
		if id == "" {
			id = fmt.Sprint(hit.ID)
		}
		matches = append(matches, domain.VectorMatch{
			ID:    id,
			Score: hit.Score,
			Metadata: domain.RecordMetadata{
				DocumentID: hit.Payload.DocumentID,
				Filename:   hit.Payload.Filename,
				ChunkIndex: hit.Payload.ChunkIndex,
				Text:       hit.Payload.Text,
				TenantID:   hit.Payload.TenantID,
			},
		})
	}
	return vectorstore.Rank(matches, topK), nil
}

// collectionWidth returns the collection's vector size, or 0 if it does
// not exist. Known sizes are cached.
func (s *Store) collectionWidth(ctx context.Context, collection string) (int, error) {
	s.mu.Lock()
	width, ok := s.widths[collection]
	s.mu.Unlock()
	if ok && width > 0 {
		return width, nil
	}

	var resp collectionResponse
	status, err := s.do(ctx, http.MethodGet, "/collections/"+collection, nil, &resp)
	if status == http.StatusNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	width = resp.Result.Config.Params.Vectors.Size
	s.mu.Lock()
	s.widths[collection] = width
	s.mu.Unlock()
	return width, nil
}

// ensureCollection returns the collection's width, creating it with width
// when it does not exist. A collection created concurrently by another
// writer is adopted rather than reported as an error.
func (s *Store) ensureCollection(ctx context.Context, collection string, width int) (int, error) {
	existing, err := s.collectionWidth(ctx, collection)
	if err != nil || existing > 0 {
		return existing, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err = s.collectionWidth(ctx, collection)
	if err != nil || existing > 0 {
		return existing, err
	}

	created, err := s.createCollection(ctx, collection, width)
	if err != nil {
		return 0, err
	}
	if created {
		return width, nil
	}

	existing, err = s.collectionWidth(ctx, collection)
	if err != nil {
		return 0, err
	}
	if existing == 0 {
		return 0, fmt.Errorf("%w: qdrant: collection %s reported as existing but not found",
			domain.ErrIndexUnavailable, collection)
	}
	return existing, nil
}

// createCollection creates the collection and its tenant index. It returns
// false without error when the collection already exists.
func (s *Store) createCollection(ctx context.Context, collection string, width int) (bool, error) {
	body := map[string]any{
		"vectors": map[string]any{"size": width, "distance": "Cosine"},
	}
	status, err := s.do(ctx, http.MethodPut, "/collections/"+collection, body, nil)
	// Older servers answer 400 rather than 409 for an existing collection.
	if status == http.StatusConflict ||
		(status == http.StatusBadRequest && err != nil && strings.Contains(err.Error(), "already exists")) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create collection %s: %w", collection, err)
	}

	// Index the tenant field so filtered search stays fast.
	index := map[string]any{"field_name": "tenant_id", "field_schema": "keyword"}
	if _, err := s.do(ctx, http.MethodPut, "/collections/"+collection+"/index?wait=true", index, nil); err != nil {
		return false, fmt.Errorf("index tenant_id on %s: %w", collection, err)
	}

	s.mu.Lock()
	s.widths[collection] = width
	s.mu.Unlock()
	return true, nil
}

// do sends a JSON request and decodes the response into out when non-nil.
// It returns the HTTP status alongside any error.
func (s *Store) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: qdrant: %w", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: qdrant: read response: %w", domain.ErrIndexUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: qdrant %s %s (status %d): %s",
			domain.ErrIndexUnavailable, method, path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: qdrant: decode response: %w", domain.ErrIndexUnavailable, err)
		}
	}
	return resp.StatusCode, nil
}

// Dimensions returns the configured width, or 0 when adopted per collection.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Ping checks that the Qdrant endpoint answers.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodGet, "/collections", nil, nil)
	return err
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
