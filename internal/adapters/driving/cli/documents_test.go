package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

func TestDocumentsCmd_Alias(t *testing.T) {
	assert.Contains(t, documentsCmd.Aliases, "docs")
}

func TestDocumentsList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "d1")
	assert.Contains(t, out, "policy.pdf")
	assert.Contains(t, out, "3 chunks")
	assert.NotContains(t, out, "other.txt")
}

func TestDocumentsList_OtherTenant(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "docs", "list", "-a", "acme")

	require.NoError(t, err)
	assert.Contains(t, out, "other.txt")
	assert.NotContains(t, out, "policy.pdf")
}

func TestDocumentsList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "list", "-a", "nobody")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents found.")
}

func TestDocumentsShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "show", "d1")

	require.NoError(t, err)
	assert.Contains(t, out, "Filename:     policy.pdf")
	assert.Contains(t, out, "Content type: application/pdf")
	assert.Contains(t, out, "Assistant:    default")
	assert.Contains(t, out, "Size:         1024 bytes")
	assert.Contains(t, out, "Chunks:       3")
}

func TestDocumentsShow_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "documents", "show", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentsShow_OtherAssistant(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "documents", "show", "d2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err := runCommand(t, "documents", "show", "d2", "-a", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Filename:     other.txt")
}

func TestDocumentsShow_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "documents", "show", "d1", "-o", "json")

	require.NoError(t, err)
	assert.Contains(t, out, `"document_id": "d1"`)
	assert.Contains(t, out, `"assistant_id": "default"`)
	assert.Contains(t, out, `"chunks": 3`)
}
