package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// DefaultTopK is used when a search names no result count.
const DefaultTopK = 5

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query       string `json:"query" jsonschema:"the question or phrase to search for"`
	AssistantID string `json:"assistant_id,omitempty" jsonschema:"knowledge base to search (default \"default\")"`
	TopK        int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return, 1 to 20 (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query        string `json:"query" jsonschema:"the question to answer"`
	AssistantID  string `json:"assistant_id,omitempty" jsonschema:"knowledge base to ground the answer in (default \"default\")"`
	SystemPrompt string `json:"system_prompt,omitempty" jsonschema:"replaces the default system prompt"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Response string             `json:"response"`
	Sources  []domain.SourceRef `json:"sources"`
}

// ListDocumentsInput is the input schema for the document listing tool.
type ListDocumentsInput struct {
	AssistantID string `json:"assistant_id,omitempty" jsonschema:"knowledge base to list (default \"default\")"`
}

// ListDocumentsOutput is the output schema for the document listing tool.
type ListDocumentsOutput struct {
	Documents []domain.Document `json:"documents"`
	Count     int               `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_knowledge_base",
		Description: "Find the document chunks most relevant to a query",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_knowledge_base",
			Description: "Answer a question using retrieved document chunks as context",
		}, s.handleAsk)
	}

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List the documents uploaded to a knowledge base",
		}, s.handleListDocuments)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > domain.MaxTopK {
		topK = domain.MaxTopK
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, tenantOrDefault(input.AssistantID), topK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Query:   input.Query,
		Results: results,
		Count:   len(results),
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, domain.AnswerRequest{
		Query:        input.Query,
		TenantID:     tenantOrDefault(input.AssistantID),
		SystemPrompt: input.SystemPrompt,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Response: answer.Response,
		Sources:  answer.Sources,
	}, nil
}

// handleListDocuments handles the document listing tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx, tenantOrDefault(input.AssistantID))
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	return nil, ListDocumentsOutput{
		Documents: docs,
		Count:     len(docs),
	}, nil
}

func tenantOrDefault(id string) string {
	if id == "" {
		return domain.DefaultTenantID
	}
	return id
}
