package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-kb/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the ingestion pipeline: extract, chunk, embed, upsert.
//
// All records of a document are written in a single Upsert call. Whether
// that call is atomic depends on the store: the memory and SQLite stores
// apply it all-or-nothing, remote stores do not.
type IngestService struct {
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	docStore   driven.DocumentStore

	newID func() string
	now   func() time.Time
}

// NewIngestService creates a new ingestion service.
// The docStore parameter is optional (can be nil).
func NewIngestService(
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	docStore driven.DocumentStore,
) *IngestService {
	return &IngestService{
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		docStore:   docStore,
		newID:      func() string { return uuid.New().String() },
		now:        time.Now,
	}
}

// Ingest processes one document for a tenant.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	logger.Section("Ingest")
	logger.Debug("File: %q (%s, %d bytes), tenant: %s", req.Filename, req.ContentType, len(req.Data), req.TenantID)

	if err := domain.ValidateTenantID(req.TenantID); err != nil {
		return nil, err
	}

	text, err := s.extractors.Extract(ctx, req.Data, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", req.Filename, err)
	}
	logger.Debug("Extracted %d bytes of text", len(text))

	documentID := s.newID()
	chunks := s.chunker.Chunk(documentID, text)
	logger.Debug("Chunked into %d chunks", len(chunks))

	if len(chunks) > 0 {
		records, err := s.buildRecords(ctx, req, chunks)
		if err != nil {
			return nil, err
		}
		if err := s.store.Upsert(ctx, req.TenantID, records); err != nil {
			logger.Warn("Upsert failed for %s: %v", documentID, err)
			return nil, fmt.Errorf("upsert: %w", err)
		}
		logger.Debug("Upserted %d records into namespace %s", len(records), req.TenantID)
	}

	if s.docStore != nil {
		doc := &domain.Document{
			ID:          documentID,
			Filename:    req.Filename,
			ContentType: req.ContentType,
			TenantID:    req.TenantID,
			Size:        int64(len(req.Data)),
			ChunkCount:  len(chunks),
			CreatedAt:   s.now(),
		}
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("save document: %w", err)
		}
	}

	logger.Info("Ingested %s as %s (%d chunks)", req.Filename, documentID, len(chunks))

	return &domain.IngestResult{
		DocumentID: documentID,
		Status:     domain.IngestStatusProcessed,
		Chunks:     len(chunks),
	}, nil
}

func (s *IngestService) buildRecords(
	ctx context.Context, req domain.IngestRequest, chunks []domain.Chunk,
) ([]domain.VectorRecord, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.VectorRecord{
			ID:     domain.RecordID(c.DocumentID, c.Index),
			Vector: vectors[i],
			Metadata: domain.RecordMetadata{
				DocumentID: c.DocumentID,
				Filename:   req.Filename,
				ChunkIndex: c.Index,
				Text:       c.Content,
				TenantID:   req.TenantID,
			},
		}
		if s.embedder.Integrated() {
			records[i].Text = c.Content
		}
	}
	return records, nil
}
