// Package chunker provides a boundary-aware, overlapping text chunker.
//
// Chunk size is expressed in tokens and approximated as four characters per
// token. Each window prefers to end just after the last period or newline in
// its back half; consecutive chunks share a fixed number of characters.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default nominal token count per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default fraction of each window repeated in the next chunk.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// charsPerToken approximates token length in characters.
const charsPerToken = 4

// Processor splits text into chunks.
type Processor struct {
	chunkSize int
	overlap   float64
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the nominal chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap as a fraction of the window.
func WithOverlap(overlap float64) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker with the given options.
// An overlap outside [0, 1) or a non-positive size is a configuration error.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize < 1 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, p.chunkSize)
	}
	if p.overlap < 0 || p.overlap >= 1 {
		return nil, fmt.Errorf("%w: overlap must be in [0, 1), got %g", domain.ErrConfiguration, p.overlap)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Window returns the window width in characters.
func (p *Processor) Window() int {
	return p.chunkSize * charsPerToken
}

// OverlapChars returns the number of characters shared by consecutive chunks.
func (p *Processor) OverlapChars() int {
	return int(float64(p.Window()) * p.overlap)
}

// Chunk splits text into ordered chunks. Offsets count characters, not bytes.
func (p *Processor) Chunk(documentID, text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	window := p.Window()
	overlapChars := p.OverlapChars()

	chunks := make([]domain.Chunk, 0, n/max(window-overlapChars, 1)+1)

	start := 0
	for start < n {
		end := start + window
		slice := runes[start:min(end, n)]

		if end < n {
			breakPoint := max(lastIndex(slice, '.'), lastIndex(slice, '\n'))
			if float64(breakPoint) > float64(window)*0.5 {
				slice = slice[:breakPoint+1]
				end = start + breakPoint + 1
			}
		}

		chunks = append(chunks, domain.Chunk{
			DocumentID: documentID,
			Index:      len(chunks),
			Start:      start,
			End:        end,
			Content:    strings.TrimSpace(string(slice)),
		})

		next := end - overlapChars
		if next <= start {
			// A boundary cut shorter than the overlap would stall; resume at the cut.
			next = end
		}
		start = next
	}

	return chunks
}

func lastIndex(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
