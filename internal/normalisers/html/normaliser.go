package html

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Extractor = (*Normaliser)(nil)

// strippedSelectors are removed before conversion.
const strippedSelectors = "script, style, noscript, svg, nav, footer, head"

var multiNewlines = regexp.MustCompile(`\n{3,}`)

// Normaliser handles HTML documents.
type Normaliser struct {
	converter *md.Converter
}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{
		converter: md.NewConverter("", true, nil),
	}
}

// SupportedContentTypes returns the media types this normaliser handles.
func (n *Normaliser) SupportedContentTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Extract converts HTML into Markdown-flavoured text.
func (n *Normaliser) Extract(_ context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: html is not valid UTF-8", domain.ErrInvalidEncoding)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(strippedSelectors).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	markdown := n.converter.Convert(body)
	return tidy(markdown), nil
}

// tidy trims trailing spaces per line and collapses runs of blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = strings.Join(lines, "\n")
	s = multiNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
