package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-kb/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Generation parameters for grounded answers.
const (
	AnswerTopK        = 5
	AnswerTemperature = 0.7
)

// AnswerService assembles retrieved context into a generation request.
type AnswerService struct {
	retriever driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
}

// NewAnswerService creates a new answer service.
// The prompts parameter is optional (can be nil); built-in prompts are used then.
func NewAnswerService(
	retriever driving.RetrievalService, llm driven.LLMService, prompts driven.PromptStore,
) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
	}
}

// Answer retrieves context for the tenant and asks the language model.
func (s *AnswerService) Answer(ctx context.Context, req domain.AnswerRequest) (*domain.Answer, error) {
	logger.Section("Answer")

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	for i, m := range req.History {
		if !m.Role.IsValid() {
			return nil, fmt.Errorf("%w: history[%d] has unknown role %q", domain.ErrInvalidInput, i, m.Role)
		}
	}

	results, err := s.retriever.Retrieve(ctx, req.Query, req.TenantID, AnswerTopK)
	if err != nil {
		return nil, err
	}
	logger.Debug("Grounding on %d chunks", len(results))

	systemPrompt := req.SystemPrompt
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = s.loadPrompt(driven.PromptRAGSystem, domain.DefaultRAGSystemPrompt)
	}
	userTemplate := s.loadPrompt(driven.PromptRAGUser, domain.DefaultRAGUserTemplate)
	if strings.Count(userTemplate, "%s") != 2 {
		logger.Warn("Prompt %s must contain two %%s placeholders, using default", driven.PromptRAGUser)
		userTemplate = domain.DefaultRAGUserTemplate
	}

	messages := BuildMessages(systemPrompt, req.History, BuildContext(results), req.Query, userTemplate)
	logger.Debug("Sending %d messages to %s", len(messages), s.llm.ModelName())

	response, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: AnswerTemperature})
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	return &domain.Answer{
		Response: response,
		Sources:  BuildSources(results),
	}, nil
}

func (s *AnswerService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		logger.Debug("Prompt %s unavailable, using default", name)
		return fallback
	}
	return prompt
}
