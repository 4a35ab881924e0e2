package httpapi

import (
	"errors"

	"github.com/custodia-labs/sercha-kb/internal/core/ports/driving"
)

// Errors returned when a required port is missing.
var (
	ErrMissingIngestService    = errors.New("httpapi: ingest service is required")
	ErrMissingRetrievalService = errors.New("httpapi: retrieval service is required")
	ErrMissingAnswerService    = errors.New("httpapi: answer service is required")
	ErrMissingDocumentService  = errors.New("httpapi: document service is required")
)

// Ports aggregates the driving ports the API dispatches to.
type Ports struct {
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Document  driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Ingest == nil:
		return ErrMissingIngestService
	case p.Retrieval == nil:
		return ErrMissingRetrievalService
	case p.Answer == nil:
		return ErrMissingAnswerService
	case p.Document == nil:
		return ErrMissingDocumentService
	}
	return nil
}
