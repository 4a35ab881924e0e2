package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestNewStore_RunsMigrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.DocumentStore().SaveDocument(context.Background(), &domain.Document{
		ID: "d1", TenantID: "acme", CreatedAt: time.Now(),
	}))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	doc, err := second.DocumentStore().GetDocument(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "acme", doc.TenantID)
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	docs := setupTestStore(t).DocumentStore()
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)

	want := &domain.Document{
		ID:          "d1",
		Filename:    "notes.md",
		ContentType: "text/markdown",
		TenantID:    "acme",
		Size:        42,
		ChunkCount:  3,
		CreatedAt:   created,
	}
	require.NoError(t, docs.SaveDocument(ctx, want))

	got, err := docs.GetDocument(ctx, "d1")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDocumentStore_GetMissing(t *testing.T) {
	docs := setupTestStore(t).DocumentStore()

	_, err := docs.GetDocument(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListNewestFirstPerTenant(t *testing.T) {
	docs := setupTestStore(t).DocumentStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{ID: "old", TenantID: "acme", CreatedAt: base}))
	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{ID: "new", TenantID: "acme", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{ID: "other", TenantID: "globex", CreatedAt: base}))

	list, err := docs.ListDocuments(ctx, "acme")

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}

func TestDocumentStore_ListEmpty(t *testing.T) {
	docs := setupTestStore(t).DocumentStore()

	list, err := docs.ListDocuments(context.Background(), "nobody")

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func record(id string, vec ...float32) domain.VectorRecord {
	return domain.VectorRecord{
		ID:     id,
		Vector: vec,
		Metadata: domain.RecordMetadata{
			DocumentID: "doc",
			Filename:   id + ".txt",
			Text:       "text of " + id,
		},
	}
}

func TestVectorStore_UpsertAndQuery(t *testing.T) {
	vs := setupTestStore(t).VectorStore(0)
	ctx := context.Background()

	require.NoError(t, vs.Upsert(ctx, "acme", []domain.VectorRecord{
		record("a", 1, 0),
		record("b", 0.7, 0.7),
		record("c", 0, 1),
	}))

	matches, err := vs.Query(ctx, "acme", domain.VectorQuery{Vector: []float32{1, 0}}, 2)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	assert.Equal(t, "b", matches[1].ID)
	assert.Equal(t, "acme", matches[0].Metadata.TenantID)
	assert.Equal(t, "a.txt", matches[0].Metadata.Filename)
	assert.Equal(t, "text of a", matches[0].Metadata.Text)
}

func TestVectorStore_TenantIsolation(t *testing.T) {
	vs := setupTestStore(t).VectorStore(0)
	ctx := context.Background()

	require.NoError(t, vs.Upsert(ctx, "acme", []domain.VectorRecord{record("a", 1, 0)}))
	require.NoError(t, vs.Upsert(ctx, "globex", []domain.VectorRecord{record("g", 1, 0)}))

	matches, err := vs.Query(ctx, "globex", domain.VectorQuery{Vector: []float32{1, 0}}, 5)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "g", matches[0].ID)
}

func TestVectorStore_UpsertIsIdempotent(t *testing.T) {
	vs := setupTestStore(t).VectorStore(0)
	ctx := context.Background()

	require.NoError(t, vs.Upsert(ctx, "acme", []domain.VectorRecord{record("a", 1, 0)}))
	require.NoError(t, vs.Upsert(ctx, "acme", []domain.VectorRecord{record("a", 0, 1)}))

	n, err := vs.Count(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := vs.Query(ctx, "acme", domain.VectorQuery{Vector: []float32{0, 1}}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestVectorStore_DimensionMismatch(t *testing.T) {
	vs := setupTestStore(t).VectorStore(0)
	ctx := context.Background()
	require.NoError(t, vs.Upsert(ctx, "acme", []domain.VectorRecord{record("a", 1, 0)}))

	err := vs.Upsert(ctx, "acme", []domain.VectorRecord{record("b", 1, 0, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = vs.Query(ctx, "acme", domain.VectorQuery{Vector: []float32{1, 0, 0}}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	fixed := setupTestStore(t).VectorStore(3)
	err = fixed.Upsert(ctx, "acme", []domain.VectorRecord{record("a", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorStore_FailedBatchWritesNothing(t *testing.T) {
	vs := setupTestStore(t).VectorStore(0)
	ctx := context.Background()

	err := vs.Upsert(ctx, "acme", []domain.VectorRecord{record("a", 1, 0), record("b", 1)})
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)

	n, err := vs.Count(ctx, "acme")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVectorStore_EmptyNamespace(t *testing.T) {
	vs := setupTestStore(t).VectorStore(0)

	matches, err := vs.Query(context.Background(), "nobody", domain.VectorQuery{Vector: []float32{1}}, 5)

	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestVectorStore_TextRejected(t *testing.T) {
	vs := setupTestStore(t).VectorStore(0)
	ctx := context.Background()

	err := vs.Upsert(ctx, "acme", []domain.VectorRecord{{ID: "a", Text: "hello"}})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = vs.Query(ctx, "acme", domain.VectorQuery{Text: "hello"}, 1)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestVectorStore_ConcurrentUpserts(t *testing.T) {
	vs := setupTestStore(t).VectorStore(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, vs.Upsert(ctx, "acme", []domain.VectorRecord{record(fmt.Sprintf("r%d", i), 1, float32(i))}))
		}(i)
	}
	wg.Wait()

	n, err := vs.Count(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestVectorStore_PingAndDimensions(t *testing.T) {
	vs := setupTestStore(t).VectorStore(384)

	assert.NoError(t, vs.Ping(context.Background()))
	assert.Equal(t, 384, vs.Dimensions())
	assert.NoError(t, vs.Close())
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0.25, -1, 3.5}

	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Empty(t, bytesToFloat32Slice(nil))
}
