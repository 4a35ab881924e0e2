package normalisers

import (
	"context"
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-kb/internal/normalisers/html"
	"github.com/custodia-labs/sercha-kb/internal/normalisers/pdf"
	"github.com/custodia-labs/sercha-kb/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction by media type. Exact matches win over
// "type/*" wildcards; later registrations replace earlier ones.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]driven.Extractor)}
}

// NewDefaultRegistry creates a registry with the built-in extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(pdf.New())
	r.Register(html.New())
	return r
}

// Register adds an extractor for each of its content types.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ct := range e.SupportedContentTypes() {
		r.extractors[strings.ToLower(ct)] = e
	}
}

// Extract finds the extractor for contentType and runs it.
func (r *Registry) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	mediaType, err := normalise(contentType)
	if err != nil {
		return "", err
	}

	e := r.lookup(mediaType)
	if e == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedContentType, mediaType)
	}
	return e.Extract(ctx, data)
}

// SupportedContentTypes returns the registered media types in sorted order.
func (r *Registry) SupportedContentTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.extractors))
	for ct := range r.extractors {
		types = append(types, ct)
	}
	sort.Strings(types)
	return types
}

func (r *Registry) lookup(mediaType string) driven.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.extractors[mediaType]; ok {
		return e
	}
	if i := strings.IndexByte(mediaType, '/'); i > 0 {
		if e, ok := r.extractors[mediaType[:i]+"/*"]; ok {
			return e
		}
	}
	return nil
}

// normalise strips parameters such as charset and lowercases the media type.
func normalise(contentType string) (string, error) {
	if strings.TrimSpace(contentType) == "" {
		return "", fmt.Errorf("%w: empty content type", domain.ErrUnsupportedContentType)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedContentType, contentType)
	}
	return strings.ToLower(mediaType), nil
}
