package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCmd_RequiresFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_IngestsEachFile(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	dir := t.TempDir()
	a := writeTempFile(t, dir, "notes.txt", "plain notes")
	b := writeTempFile(t, dir, "readme.md", "# Readme")

	out, err := runCommand(t, "ingest", a, b, "--assistant", "acme")

	require.NoError(t, err)
	calls := ts.ingest.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "notes.txt", calls[0].Filename)
	assert.Equal(t, "text/plain", calls[0].ContentType)
	assert.Equal(t, "acme", calls[0].TenantID)
	assert.Equal(t, []byte("plain notes"), calls[0].Data)
	assert.Equal(t, "text/markdown", calls[1].ContentType)
	assert.Contains(t, out, "Ingested "+a+": doc-notes.txt (2 chunks)")
}

func TestIngestCmd_ContentTypeOverride(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	path := writeTempFile(t, t.TempDir(), "data.bin", "text really")

	_, err := runCommand(t, "ingest", path, "--content-type", "text/plain")

	require.NoError(t, err)
	calls := ts.ingest.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "text/plain", calls[0].ContentType)
	assert.Equal(t, domain.DefaultTenantID, calls[0].TenantID)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "ingest", filepath.Join(t.TempDir(), "absent.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.txt")
}

func TestIngestCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	ts.ingest.err = domain.ErrUnsupportedContentType
	path := writeTempFile(t, t.TempDir(), "a.txt", "x")

	_, err := runCommand(t, "ingest", path)

	assert.ErrorIs(t, err, domain.ErrUnsupportedContentType)
}

func TestIngestCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	path := writeTempFile(t, t.TempDir(), "a.txt", "x")

	out, err := runCommand(t, "ingest", path, "-o", "json")

	require.NoError(t, err)
	assert.Contains(t, out, `"document_id": "doc-a.txt"`)
	assert.Contains(t, out, `"status": "processed"`)
	assert.Contains(t, out, `"file": "`+path+`"`)
}
