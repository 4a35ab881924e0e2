package httpapi

import (
	"context"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

type mockIngestService struct {
	result *domain.IngestResult
	err    error
	req    domain.IngestRequest
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockRetrievalService struct {
	results []domain.SearchResult
	err     error

	query  string
	tenant string
	topK   int
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context, query, tenantID string, topK int,
) ([]domain.SearchResult, error) {
	m.query, m.tenant, m.topK = query, tenantID, topK
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockAnswerService struct {
	answer *domain.Answer
	err    error
	req    domain.AnswerRequest
}

func (m *mockAnswerService) Answer(_ context.Context, req domain.AnswerRequest) (*domain.Answer, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

type mockDocumentService struct {
	docs   []domain.Document
	err    error
	tenant string
}

func (m *mockDocumentService) List(_ context.Context, tenantID string) ([]domain.Document, error) {
	m.tenant = tenantID
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, tenantID, id string) (*domain.Document, error) {
	m.tenant = tenantID
	for i := range m.docs {
		if m.docs[i].ID == id && m.docs[i].TenantID == tenantID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

type testPorts struct {
	ingest    *mockIngestService
	retrieval *mockRetrievalService
	answer    *mockAnswerService
	document  *mockDocumentService
}

func newTestPorts() *testPorts {
	return &testPorts{
		ingest:    &mockIngestService{result: &domain.IngestResult{DocumentID: "doc-1", Status: domain.IngestStatusProcessed, Chunks: 3}},
		retrieval: &mockRetrievalService{},
		answer:    &mockAnswerService{answer: &domain.Answer{Response: "ok", Sources: []domain.SourceRef{}}},
		document:  &mockDocumentService{},
	}
}

func (p *testPorts) ports() *Ports {
	return &Ports{Ingest: p.ingest, Retrieval: p.retrieval, Answer: p.answer, Document: p.document}
}
