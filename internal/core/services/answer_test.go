package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

func TestAnswerService_Answer_Success(t *testing.T) {
	retriever := &mockRetrievalService{results: []domain.SearchResult{
		{Content: "Refunds are issued within 14 days.", Source: "policy.pdf", Score: 0.88},
		{Content: "Contact billing@example.com.", Source: "faq.md", Score: 0.61},
	}}
	llm := &mockLLMService{response: "Within 14 days [policy.pdf]."}
	svc := NewAnswerService(retriever, llm, nil)

	answer, err := svc.Answer(context.Background(), domain.AnswerRequest{
		Query:    "How long do refunds take?",
		TenantID: "acme",
	})

	require.NoError(t, err)
	assert.Equal(t, "Within 14 days [policy.pdf].", answer.Response)
	assert.Equal(t, []domain.SourceRef{
		{Source: "policy.pdf", Score: 0.88},
		{Source: "faq.md", Score: 0.61},
	}, answer.Sources)

	assert.Equal(t, "How long do refunds take?", retriever.query)
	assert.Equal(t, "acme", retriever.tenantID)
	assert.Equal(t, AnswerTopK, retriever.topK)

	assert.InDelta(t, AnswerTemperature, llm.opts.Temperature, 1e-9)
	require.Len(t, llm.messages, 2)
	assert.Equal(t, domain.RoleSystem, llm.messages[0].Role)
	assert.Equal(t, domain.DefaultRAGSystemPrompt, llm.messages[0].Content)
	assert.Equal(t, domain.RoleUser, llm.messages[1].Role)
	assert.Contains(t, llm.messages[1].Content, "[Source: policy.pdf]\nRefunds are issued within 14 days.")
	assert.Contains(t, llm.messages[1].Content, "How long do refunds take?")
}

func TestAnswerService_Answer_HistoryAndSystemPromptOverride(t *testing.T) {
	llm := &mockLLMService{response: "ok"}
	svc := NewAnswerService(&mockRetrievalService{}, llm, nil)

	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
	}
	_, err := svc.Answer(context.Background(), domain.AnswerRequest{
		Query:        "and then?",
		TenantID:     "acme",
		History:      history,
		SystemPrompt: "Answer like a pirate.",
	})

	require.NoError(t, err)
	require.Len(t, llm.messages, 4)
	assert.Equal(t, "Answer like a pirate.", llm.messages[0].Content)
	assert.Equal(t, history, llm.messages[1:3])
	assert.Equal(t, domain.RoleUser, llm.messages[3].Role)
}

func TestAnswerService_Answer_NoContextStillGenerates(t *testing.T) {
	llm := &mockLLMService{response: "I don't know."}
	svc := NewAnswerService(&mockRetrievalService{}, llm, nil)

	answer, err := svc.Answer(context.Background(), domain.AnswerRequest{Query: "q", TenantID: "acme"})

	require.NoError(t, err)
	assert.Equal(t, "I don't know.", answer.Response)
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
	assert.Contains(t, llm.messages[len(llm.messages)-1].Content, domain.NoContextFound)
}

func TestAnswerService_Answer_PromptStoreOverrides(t *testing.T) {
	prompts := &mockPromptStore{prompts: map[string]string{
		driven.PromptRAGSystem: "custom system",
		driven.PromptRAGUser:   "CTX<%s> Q<%s>",
	}}
	llm := &mockLLMService{response: "ok"}
	retriever := &mockRetrievalService{results: []domain.SearchResult{{Content: "c", Source: "s"}}}
	svc := NewAnswerService(retriever, llm, prompts)

	_, err := svc.Answer(context.Background(), domain.AnswerRequest{Query: "why", TenantID: "acme"})

	require.NoError(t, err)
	assert.Equal(t, "custom system", llm.messages[0].Content)
	assert.Equal(t, "CTX<[Source: s]\nc> Q<why>", llm.messages[1].Content)
}

func TestAnswerService_Answer_MalformedTemplateFallsBack(t *testing.T) {
	prompts := &mockPromptStore{prompts: map[string]string{
		driven.PromptRAGUser: "only one %s here",
	}}
	llm := &mockLLMService{response: "ok"}
	svc := NewAnswerService(&mockRetrievalService{}, llm, prompts)

	_, err := svc.Answer(context.Background(), domain.AnswerRequest{Query: "why", TenantID: "acme"})

	require.NoError(t, err)
	assert.NotContains(t, llm.messages[1].Content, "only one")
	assert.Contains(t, llm.messages[1].Content, "why")
}

func TestAnswerService_Answer_Validation(t *testing.T) {
	llm := &mockLLMService{}
	retriever := &mockRetrievalService{}
	svc := NewAnswerService(retriever, llm, nil)

	_, err := svc.Answer(context.Background(), domain.AnswerRequest{Query: " ", TenantID: "acme"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Answer(context.Background(), domain.AnswerRequest{
		Query:    "q",
		TenantID: "acme",
		History:  []domain.ChatMessage{{Role: "tool", Content: "x"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, retriever.query)
	assert.Nil(t, llm.messages)
}

func TestAnswerService_Answer_RetrievalErrorPropagates(t *testing.T) {
	llm := &mockLLMService{}
	svc := NewAnswerService(&mockRetrievalService{err: domain.ErrInvalidTenant}, llm, nil)

	_, err := svc.Answer(context.Background(), domain.AnswerRequest{Query: "q", TenantID: "bad/id"})

	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
	assert.Nil(t, llm.messages)
}

func TestAnswerService_Answer_GenerationFailure(t *testing.T) {
	llm := &mockLLMService{chatErr: errors.New("503 upstream")}
	svc := NewAnswerService(&mockRetrievalService{}, llm, nil)

	answer, err := svc.Answer(context.Background(), domain.AnswerRequest{Query: "q", TenantID: "acme"})

	assert.Nil(t, answer)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "503 upstream")
}
