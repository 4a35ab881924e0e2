package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

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
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id && m.docs[i].TenantID == tenantID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}
