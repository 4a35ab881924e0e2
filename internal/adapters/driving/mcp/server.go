// Package mcp exposes the knowledge base to AI assistants over the
// Model Context Protocol.
//
// Tools:
//
//	search_knowledge_base  ranked chunks for a query
//	ask_knowledge_base     grounded answer with sources (needs Answer)
//	list_documents         documents of one assistant
//
// Resources:
//
//	kb://assistants/{assistantId}/documents
//	kb://assistants/{assistantId}/documents/{documentId}
//
// Every tool and resource is scoped to one assistant; a document id from
// another assistant reads as not found.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

const shutdownTimeout = 5 * time.Second

// instructions is sent to clients during initialization.
const instructions = "Knowledge base for uploaded assistant documents. " +
	"Use search_knowledge_base for raw passages and ask_knowledge_base for a cited answer. " +
	"Pass assistant_id to pick the assistant; it defaults to the configured one."

// Server wraps an MCP server bound to the knowledge base ports.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer validates the ports and registers the tools and resources.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "sercha-kb", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves a single client over stdin/stdout until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves streamable HTTP on addr until ctx is done, then drains
// in-flight sessions for up to shutdownTimeout.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp http server: %w", err)
	}
	return nil
}
