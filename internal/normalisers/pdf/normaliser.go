// Package pdf extracts page text from PDF documents using poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-kb/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Extractor = (*Normaliser)(nil)

const toolName = "pdftotext"

// pageSeparator is emitted by pdftotext after every page.
const pageSeparator = "\f"

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a PDF normaliser backed by the system pdftotext.
func New() *Normaliser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner, lookPath: exec.LookPath}
}

// SupportedContentTypes returns the media types this normaliser handles.
func (n *Normaliser) SupportedContentTypes() []string {
	return []string{"application/pdf"}
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return "PDF extraction requires pdftotext (poppler).\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils"
}

// Extract returns each page's text followed by a single newline, in page
// order. The line break pdftotext ends each page with is not doubled.
// Image-only documents produce empty text.
func (n *Normaliser) Extract(ctx context.Context, data []byte) (string, error) {
	if _, err := n.lookPath(toolName); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrConfiguration, ErrPDFToolNotFound)
	}

	tmp, err := os.CreateTemp("", "sercha-kb-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	out, err := n.runner.Run(ctx, toolName, "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	pages := splitPages(string(out))
	logger.Debug("pdf: extracted %d pages (%d bytes)", len(pages), len(out))

	var b strings.Builder
	for _, page := range pages {
		b.WriteString(strings.TrimSuffix(page, "\n"))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// splitPages splits pdftotext output on form feeds, dropping the empty
// remainder after the final separator.
func splitPages(out string) []string {
	if out == "" {
		return nil
	}
	pages := strings.Split(out, pageSeparator)
	if pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
