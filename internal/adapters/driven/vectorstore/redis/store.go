// Package redis provides a vector store backed by Redis with the
// RediSearch module.
//
// Each namespace gets its own HNSW index named assistant-{namespace}
// over hashes with the key prefix kb:{namespace}:. Vectors are stored as
// little-endian float32 blobs.
package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURL            = "redis://localhost:6379/0"
	defaultEFConstruction = 200
	defaultM              = 16
)

// Field names in the Redis hash.
const (
	fieldVector     = "vector"
	fieldText       = "text"
	fieldDocumentID = "document_id"
	fieldFilename   = "filename"
	fieldChunkIndex = "chunk_index"
	fieldTenantID   = "tenant_id"
	fieldRecordID   = "record_id"
	fieldDistance   = "dist"
)

// Config holds configuration for the Redis store.
type Config struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	// Dimensions fixes the vector width. Zero adopts it per index.
	Dimensions int
}

// Store implements driven.VectorStore against RediSearch.
type Store struct {
	client     *goredis.Client
	dimensions int

	mu     sync.Mutex
	widths map[string]int // index name -> DIM

	createMu sync.Mutex
}

// NewStore parses the URL and creates a client. No connection is made
// until first use.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %w", domain.ErrConfiguration, err)
	}
	// FT.* replies are parsed as RESP2 arrays.
	opts.Protocol = 2

	return &Store{
		client:     goredis.NewClient(opts),
		dimensions: cfg.Dimensions,
		widths:     make(map[string]int),
	}, nil
}

// KeyPrefix returns the hash key prefix for a namespace.
func KeyPrefix(ns string) string {
	return "kb:" + ns + ":"
}

// Upsert writes records as hashes in one pipeline, creating the index on
// first write. The pipeline is not transactional.
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

	index := vectorstore.CollectionName(ns)
	existing, err := s.ensureIndex(ctx, index, ns, width)
	if err != nil {
		return err
	}
	if err := vectorstore.CheckWidth(existing, width); err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, r := range records {
		pipe.HSet(ctx, KeyPrefix(ns)+r.ID, hashFields(ns, r))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: redis: upsert: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Query runs a KNN search restricted to the namespace's tenant tag.
func (s *Store) Query(
	ctx context.Context, ns string, q domain.VectorQuery, topK int,
) ([]domain.VectorMatch, error) {
	if err := vectorstore.RequireVector(q); err != nil {
		return nil, err
	}

	index := vectorstore.CollectionName(ns)
	existing, err := s.indexWidth(ctx, index)
	if err != nil {
		return nil, err
	}
	if existing == 0 {
		return []domain.VectorMatch{}, nil
	}
	if err := vectorstore.CheckWidth(existing, len(q.Vector)); err != nil {
		return nil, err
	}

	reply, err := s.client.Do(ctx, searchArgs(index, ns, q.Vector, topK)...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis: search: %w", domain.ErrIndexUnavailable, err)
	}
	matches, err := parseSearchReply(reply, KeyPrefix(ns))
	if err != nil {
		return nil, fmt.Errorf("%w: redis: %w", domain.ErrIndexUnavailable, err)
	}
	return vectorstore.Rank(matches, topK), nil
}

// indexWidth returns the index's vector DIM, or 0 if it does not exist.
func (s *Store) indexWidth(ctx context.Context, index string) (int, error) {
	s.mu.Lock()
	width, ok := s.widths[index]
	s.mu.Unlock()
	if ok {
		return width, nil
	}

	reply, err := s.client.Do(ctx, "FT.INFO", index).Result()
	if err != nil {
		if isUnknownIndex(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: redis: %w", domain.ErrIndexUnavailable, err)
	}

	width = parseInfoDim(reply)
	if width > 0 {
		s.setWidth(index, width)
	}
	return width, nil
}

// ensureIndex returns the DIM of the index, creating it with width when
// absent. An index created concurrently by another client is adopted.
func (s *Store) ensureIndex(ctx context.Context, index, ns string, width int) (int, error) {
	existing, err := s.indexWidth(ctx, index)
	if err != nil || existing > 0 {
		return existing, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err = s.indexWidth(ctx, index)
	if err != nil || existing > 0 {
		return existing, err
	}

	err = s.client.Do(ctx, createIndexArgs(index, ns, width)...).Err()
	if err == nil {
		s.setWidth(index, width)
		return width, nil
	}
	if !isIndexExists(err) {
		return 0, fmt.Errorf("%w: redis: create index %s: %w", domain.ErrIndexUnavailable, index, err)
	}

	existing, err = s.indexWidth(ctx, index)
	if err != nil {
		return 0, err
	}
	if existing == 0 {
		return 0, fmt.Errorf("%w: redis: index %s exists without a vector field", domain.ErrIndexUnavailable, index)
	}
	return existing, nil
}

func (s *Store) setWidth(index string, width int) {
	s.mu.Lock()
	s.widths[index] = width
	s.mu.Unlock()
}

func isUnknownIndex(err error) bool {
	if errors.Is(err, goredis.Nil) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown index") || strings.Contains(msg, "no such index")
}

func isIndexExists(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "index already exists")
}

func createIndexArgs(index, ns string, width int) []any {
	return []any{
		"FT.CREATE", index,
		"ON", "HASH",
		"PREFIX", "1", KeyPrefix(ns),
		"SCHEMA",
		fieldVector, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(width),
		"DISTANCE_METRIC", "COSINE",
		"EF_CONSTRUCTION", strconv.Itoa(defaultEFConstruction),
		"M", strconv.Itoa(defaultM),
		fieldTenantID, "TAG",
		fieldDocumentID, "TAG",
		fieldFilename, "TEXT",
		fieldChunkIndex, "NUMERIC",
	}
}

func hashFields(ns string, r domain.VectorRecord) map[string]any {
	return map[string]any{
		fieldVector:     EncodeVector(r.Vector),
		fieldText:       r.Metadata.Text,
		fieldDocumentID: r.Metadata.DocumentID,
		fieldFilename:   r.Metadata.Filename,
		fieldChunkIndex: r.Metadata.ChunkIndex,
		fieldTenantID:   ns,
		fieldRecordID:   r.ID,
	}
}

func searchArgs(index, ns string, vector []float32, topK int) []any {
	query := fmt.Sprintf("(@%s:{%s})=>[KNN %d @%s $vec AS %s]",
		fieldTenantID, escapeTag(ns), topK, fieldVector, fieldDistance)
	return []any{
		"FT.SEARCH", index, query,
		"PARAMS", "2", "vec", EncodeVector(vector),
		"RETURN", "7", fieldText, fieldDocumentID, fieldFilename, fieldChunkIndex,
		fieldTenantID, fieldRecordID, fieldDistance,
		"SORTBY", fieldDistance,
		"LIMIT", "0", strconv.Itoa(topK),
		"DIALECT", "2",
	}
}

// escapeTag escapes TAG query punctuation. Tenant ids only contain
// letters, digits, '_' and '-', so '-' is the one that matters.
func escapeTag(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseSearchReply decodes an FT.SEARCH RESP2 reply:
// [total, key1, [field, value, ...], key2, [...], ...].
func parseSearchReply(reply any, prefix string) ([]domain.VectorMatch, error) {
	values, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected search reply %T", reply)
	}
	matches := make([]domain.VectorMatch, 0, len(values)/2)
	for i := 1; i+1 < len(values); i += 2 {
		key, _ := values[i].(string)
		fields, ok := values[i+1].([]any)
		if !ok {
			continue
		}

		m := domain.VectorMatch{ID: strings.TrimPrefix(key, prefix)}
		for j := 0; j+1 < len(fields); j += 2 {
			name, _ := fields[j].(string)
			val := toString(fields[j+1])
			switch name {
			case fieldText:
				m.Metadata.Text = val
			case fieldDocumentID:
				m.Metadata.DocumentID = val
			case fieldFilename:
				m.Metadata.Filename = val
			case fieldChunkIndex:
				m.Metadata.ChunkIndex, _ = strconv.Atoi(val)
			case fieldTenantID:
				m.Metadata.TenantID = val
			case fieldRecordID:
				if val != "" {
					m.ID = val
				}
			case fieldDistance:
				dist, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return nil, fmt.Errorf("parse distance %q: %w", val, err)
				}
				m.Score = 1 - dist
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// parseInfoDim finds the vector DIM in an FT.INFO reply.
func parseInfoDim(reply any) int {
	values, ok := reply.([]any)
	if !ok {
		return 0
	}
	for i := 0; i+1 < len(values); i += 2 {
		if name, _ := values[i].(string); name != "attributes" {
			continue
		}
		attrs, _ := values[i+1].([]any)
		for _, a := range attrs {
			attr, _ := a.([]any)
			for j := 0; j+1 < len(attr); j++ {
				if key, _ := attr[j].(string); strings.EqualFold(key, "dim") {
					if n, err := strconv.Atoi(toString(attr[j+1])); err == nil {
						return n
					}
				}
			}
		}
	}
	return 0
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// EncodeVector packs a vector as little-endian float32 bytes.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Dimensions returns the configured width, or 0 when adopted per index.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
