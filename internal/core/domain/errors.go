package domain

import "errors"

// Domain errors represent business logic failures.
// Every error is terminal for the current request; none are retried internally.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTenant indicates a tenant id outside the allowed alphabet or length.
	ErrInvalidTenant = errors.New("invalid tenant id")

	// Pipeline Errors.

	// ErrUnsupportedContentType indicates no extractor handles the content type.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrInvalidEncoding indicates text bytes are not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrConfiguration indicates invalid settings, such as an overlap fraction
	// of one or more, or a missing provider credential.
	ErrConfiguration = errors.New("configuration error")

	// Provider Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider is not configured
	// or could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates a vector width differs from the index width.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIndexUnavailable indicates the vector store cannot be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGenerationFailed indicates the language model call failed.
	ErrGenerationFailed = errors.New("generation failed")
)
