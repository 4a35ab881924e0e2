package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Server is the knowledge base HTTP API.
type Server struct {
	ports    *Ports
	settings domain.ServerSettings
	echo     *echo.Echo
}

// NewServer builds the router and middleware chain for the given ports.
func NewServer(ports *Ports, settings domain.ServerSettings) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if settings.Addr == "" {
		settings.Addr = domain.DefaultServerAddr
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handleError

	e.Use(middleware.Recover())
	e.Use(cors())
	e.Use(bodyLimit(settings))
	if settings.RateLimit > 0 {
		e.Use(rateLimiter(settings.RateLimit))
	}
	if settings.APIKey != "" {
		e.Use(bearerAuth(settings.APIKey))
	}

	s := &Server{ports: ports, settings: settings, echo: e}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.echo.GET(healthPath, s.handleHealth)

	kb := s.echo.Group("/api/knowledge-base")
	kb.POST("/upload", s.handleUpload)
	kb.POST("/search", s.handleSearch)
	kb.POST("/chat", s.handleChat)
	kb.GET("/documents", s.handleListDocuments)
	kb.GET("/documents/:id", s.handleGetDocument)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.settings.Addr
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("knowledge base API listening on %s", s.settings.Addr)
		errCh <- s.echo.Start(s.settings.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
