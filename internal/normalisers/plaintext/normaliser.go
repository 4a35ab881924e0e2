// Package plaintext extracts text from UTF-8 text documents.
package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Extractor = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedContentTypes returns the media types this normaliser handles.
// The text/* wildcard catches every textual subtype without a dedicated extractor.
func (n *Normaliser) SupportedContentTypes() []string {
	return []string{
		"text/*",
		"text/plain",
		"text/markdown",
		"application/json",
	}
}

// Extract decodes data as UTF-8 and returns it unchanged.
func (n *Normaliser) Extract(_ context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", domain.ErrInvalidEncoding)
	}
	return string(data), nil
}
