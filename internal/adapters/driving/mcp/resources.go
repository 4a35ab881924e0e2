package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

const uriScheme = "kb://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Document == nil {
		return
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "assistants/{assistantId}/documents",
		Name:        "assistant-documents",
		Description: "Documents uploaded to a knowledge base",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "assistants/{assistantId}/documents/{documentId}",
		Name:        "document",
		Description: "Metadata of a single uploaded document",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)
}

// handleDocumentsResource returns the documents of one tenant.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tenantID := extractTenantID(req.Params.URI)
	if tenantID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Document.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	return jsonResource(req.Params.URI, docs)
}

// handleDocumentResource returns the metadata of one document.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tenantID, docID := extractDocumentRef(req.Params.URI)
	if tenantID == "" || docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, tenantID, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return jsonResource(req.Params.URI, doc)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTenantID extracts the tenant from kb://assistants/{assistantId}/documents.
func extractTenantID(uri string) string {
	const prefix = uriScheme + "assistants/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
}

// extractDocumentRef extracts the tenant and document ID from
// kb://assistants/{assistantId}/documents/{documentId}.
func extractDocumentRef(uri string) (tenantID, docID string) {
	const prefix = uriScheme + "assistants/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}
	tenantID, docID, ok := strings.Cut(strings.TrimPrefix(uri, prefix), "/documents/")
	if !ok || strings.Contains(docID, "/") {
		return "", ""
	}
	return tenantID, docID
}
