package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// BuildContext renders results as "[Source: name]\ncontent" blocks separated
// by a blank line, in ranked order.
func BuildContext(results []domain.SearchResult) string {
	if len(results) == 0 {
		return domain.NoContextFound
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		source := r.Source
		if source == "" {
			source = domain.UnknownSource
		}
		blocks[i] = fmt.Sprintf("[Source: %s]\n%s", source, r.Content)
	}
	return strings.Join(blocks, "\n\n")
}

// BuildMessages assembles the generation request: system prompt, prior
// turns verbatim, then a user turn carrying the context and the question.
func BuildMessages(
	systemPrompt string, history []domain.ChatMessage, contextBlock, query, userTemplate string,
) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf(userTemplate, contextBlock, query),
	})
	return messages
}

// BuildSources attributes each context block to its source and score.
func BuildSources(results []domain.SearchResult) []domain.SourceRef {
	sources := make([]domain.SourceRef, len(results))
	for i, r := range results {
		sources[i] = domain.SourceRef{Source: r.Source, Score: r.Score}
	}
	return sources
}
