package driven

import "context"

// Extractor converts raw document bytes into a single text string.
type Extractor interface {
	// Extract returns the document text. Empty output is not an error.
	Extract(ctx context.Context, data []byte) (string, error)

	// SupportedContentTypes returns the media types this extractor handles.
	// A "type/*" entry matches any subtype.
	SupportedContentTypes() []string
}

// ExtractorRegistry selects an extractor by content type.
type ExtractorRegistry interface {
	// Register adds an extractor for its supported content types.
	Register(e Extractor)

	// Extract dispatches to the matching extractor.
	// Returns domain.ErrUnsupportedContentType when none matches.
	Extract(ctx context.Context, data []byte, contentType string) (string, error)

	// SupportedContentTypes returns every registered content type.
	SupportedContentTypes() []string
}
