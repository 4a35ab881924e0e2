package pinecone

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

type fakePinecone struct {
	mu        sync.Mutex
	dimension int
	paths     []string
	upserts   []upsertRequest
	records   []map[string]any
	queries   []queryRequest
	searches  []searchRequest
	matches   string
	hits      string
}

func (f *fakePinecone) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Api-Key") != "pc-key" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
		return
	}
	f.paths = append(f.paths, r.URL.Path)

	switch {
	case r.URL.Path == "/describe_index_stats":
		_ = json.NewEncoder(w).Encode(map[string]any{"dimension": f.dimension})

	case r.URL.Path == "/vectors/upsert":
		var req upsertRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.upserts = append(f.upserts, req)
		_, _ = w.Write([]byte(`{"upsertedCount":1}`))

	case r.URL.Path == "/query":
		var req queryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.queries = append(f.queries, req)
		_, _ = w.Write([]byte(f.matches))

	case strings.HasSuffix(r.URL.Path, "/upsert"):
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			var rec map[string]any
			_ = json.Unmarshal(sc.Bytes(), &rec)
			f.records = append(f.records, rec)
		}
		w.WriteHeader(http.StatusCreated)

	case strings.HasSuffix(r.URL.Path, "/search"):
		var req searchRequest
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		f.searches = append(f.searches, req)
		_, _ = w.Write([]byte(f.hits))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestStore(t *testing.T, f *fakePinecone) *Store {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	store, err := NewStore(Config{Host: server.URL, APIKey: "pc-key"})
	require.NoError(t, err)
	return store
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(Config{APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewStore(Config{Host: "idx.pinecone.io"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	store, err := NewStore(Config{Host: "idx.pinecone.io/", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://idx.pinecone.io", store.host)
}

func TestStore_UpsertVectors(t *testing.T) {
	fake := &fakePinecone{dimension: 2}
	store := newTestStore(t, fake)

	err := store.Upsert(context.Background(), "acme", []domain.VectorRecord{{
		ID:       "doc-1-chunk-0",
		Vector:   []float32{1, 0},
		Metadata: domain.RecordMetadata{DocumentID: "doc-1", Filename: "a.txt", Text: "alpha"},
	}})

	require.NoError(t, err)
	require.Len(t, fake.upserts, 1)
	assert.Equal(t, "assistant-acme", fake.upserts[0].Namespace)
	v := fake.upserts[0].Vectors[0]
	assert.Equal(t, "doc-1-chunk-0", v.ID)
	assert.Equal(t, "acme", v.Metadata["tenant_id"])
	assert.Equal(t, "a.txt", v.Metadata["filename"])
}

func TestStore_UpsertDimensionMismatch(t *testing.T) {
	store := newTestStore(t, &fakePinecone{dimension: 3})

	err := store.Upsert(context.Background(), "acme", []domain.VectorRecord{{ID: "x", Vector: []float32{1, 0}}})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_UpsertMixedBatch(t *testing.T) {
	store := newTestStore(t, &fakePinecone{dimension: 2})

	err := store.Upsert(context.Background(), "acme", []domain.VectorRecord{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Text: "beta"},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_UpsertRecordsIntegrated(t *testing.T) {
	fake := &fakePinecone{}
	store := newTestStore(t, fake)

	err := store.Upsert(context.Background(), "acme", []domain.VectorRecord{
		{ID: "d-chunk-0", Text: "alpha", Metadata: domain.RecordMetadata{Text: "alpha", ChunkIndex: 0}},
		{ID: "d-chunk-1", Text: "beta", Metadata: domain.RecordMetadata{Text: "beta", ChunkIndex: 1}},
	})

	require.NoError(t, err)
	assert.Contains(t, fake.paths, "/records/namespaces/assistant-acme/upsert")
	require.Len(t, fake.records, 2)
	assert.Equal(t, "d-chunk-1", fake.records[1]["_id"])
	assert.Equal(t, "beta", fake.records[1]["text"])
	assert.Equal(t, "acme", fake.records[1]["tenant_id"])
}

func TestStore_QueryVector(t *testing.T) {
	fake := &fakePinecone{
		dimension: 2,
		matches: `{"matches":[
			{"id":"b","score":0.4,"metadata":{"filename":"b.txt","chunk_index":1,"text":"beta","tenant_id":"acme"}},
			{"id":"a","score":0.9,"metadata":{"filename":"a.txt","chunk_index":0,"text":"alpha","tenant_id":"acme"}}
		]}`,
	}
	store := newTestStore(t, fake)

	matches, err := store.Query(context.Background(), "acme", domain.VectorQuery{Vector: []float32{1, 0}}, 5)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "b.txt", matches[1].Metadata.Filename)
	assert.Equal(t, 1, matches[1].Metadata.ChunkIndex)

	require.Len(t, fake.queries, 1)
	q := fake.queries[0]
	assert.Equal(t, 5, q.TopK)
	assert.Equal(t, "assistant-acme", q.Namespace)
	assert.True(t, q.IncludeMetadata)
	assert.Equal(t, map[string]any{"tenant_id": map[string]any{"$eq": "acme"}}, q.Filter)
}

func TestStore_QueryEmptyNamespace(t *testing.T) {
	store := newTestStore(t, &fakePinecone{dimension: 2, matches: `{"matches":[]}`})

	matches, err := store.Query(context.Background(), "nobody", domain.VectorQuery{Vector: []float32{1, 0}}, 5)

	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestStore_QueryText(t *testing.T) {
	fake := &fakePinecone{
		hits: `{"result":{"hits":[
			{"_id":"d-chunk-0","_score":0.8,"fields":{"filename":"a.txt","text":"alpha","chunk_index":0}}
		]}}`,
	}
	store := newTestStore(t, fake)

	matches, err := store.Query(context.Background(), "acme", domain.VectorQuery{Text: "alpha?"}, 3)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "d-chunk-0", matches[0].ID)
	assert.InDelta(t, 0.8, matches[0].Score, 1e-9)
	assert.Equal(t, "alpha", matches[0].Metadata.Text)

	require.Len(t, fake.searches, 1)
	assert.Equal(t, "alpha?", fake.searches[0].Query.Inputs["text"])
	assert.Equal(t, 3, fake.searches[0].Query.TopK)
	assert.Contains(t, fake.paths, "/records/namespaces/assistant-acme/search")
}

func TestStore_Unauthorized(t *testing.T) {
	server := httptest.NewServer(&fakePinecone{})
	defer server.Close()

	store, err := NewStore(Config{Host: server.URL, APIKey: "wrong"})
	require.NoError(t, err)

	assert.ErrorIs(t, store.Ping(context.Background()), domain.ErrIndexUnavailable)
}

func TestStore_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	host := server.URL
	server.Close()

	store, err := NewStore(Config{Host: host, APIKey: "pc-key", Dimensions: 2})
	require.NoError(t, err)

	_, err = store.Query(context.Background(), "acme", domain.VectorQuery{Vector: []float32{1, 0}}, 1)

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.Equal(t, 2, store.Dimensions())
}
