package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/normalisers"
)

// DefaultTopK is used when a search names no result count.
const DefaultTopK = 5

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type searchRequest struct {
	Query       string `json:"query"`
	AssistantID string `json:"assistant_id"`
	TopK        *int   `json:"top_k"`
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
}

type chatRequest struct {
	Query               string               `json:"query"`
	AssistantID         string               `json:"assistant_id"`
	ConversationHistory []domain.ChatMessage `json:"conversation_history"`
	SystemPrompt        string               `json:"system_prompt"`
}

type documentsResponse struct {
	Documents []domain.Document `json:"documents"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Service: "knowledge-base"})
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: multipart field \"file\" is required", domain.ErrInvalidInput)
	}

	data, err := readPart(fh)
	if err != nil {
		return err
	}

	result, err := s.ports.Ingest.Ingest(c.Request().Context(), domain.IngestRequest{
		TenantID:    assistantID(c),
		Filename:    fh.Filename,
		ContentType: partContentType(fh, data),
		Data:        data,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput)
	}

	topK := DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	results, err := s.ports.Retrieval.Retrieve(c.Request().Context(), req.Query, tenantOrDefault(req.AssistantID), topK)
	if err != nil {
		return err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return c.JSON(http.StatusOK, searchResponse{Query: req.Query, Results: results})
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput)
	}

	answer, err := s.ports.Answer.Answer(c.Request().Context(), domain.AnswerRequest{
		Query:        req.Query,
		TenantID:     tenantOrDefault(req.AssistantID),
		History:      req.ConversationHistory,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, answer)
}

func (s *Server) handleListDocuments(c echo.Context) error {
	docs, err := s.ports.Document.List(c.Request().Context(), assistantID(c))
	if err != nil {
		return err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return c.JSON(http.StatusOK, documentsResponse{Documents: docs})
}

func (s *Server) handleGetDocument(c echo.Context) error {
	doc, err := s.ports.Document.Get(c.Request().Context(), assistantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// assistantID reads the tenant from the form or the query string.
func assistantID(c echo.Context) string {
	if id := c.FormValue("assistant_id"); id != "" {
		return id
	}
	return tenantOrDefault(c.QueryParam("assistant_id"))
}

func tenantOrDefault(id string) string {
	if id == "" {
		return domain.DefaultTenantID
	}
	return id
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", domain.ErrInvalidInput, err)
	}
	return data, nil
}

// partContentType prefers the declared part type and falls back to detection
// when the client sent none or a generic octet stream.
func partContentType(fh *multipart.FileHeader, data []byte) string {
	ct := strings.TrimSpace(fh.Header.Get(echo.HeaderContentType))
	if ct == "" || strings.HasPrefix(ct, echo.MIMEOctetStream) {
		return normalisers.DetectContentType(fh.Filename, data)
	}
	return ct
}
