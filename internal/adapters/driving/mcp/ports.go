package mcp

import (
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server dispatches to.
type Ports struct {
	// Retrieval backs the search tool.
	Retrieval driving.RetrievalService

	// Answer backs the ask tool. Optional.
	Answer driving.AnswerService

	// Document backs the document listing tool and resources. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
