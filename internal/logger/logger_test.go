package logger

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetQuietLevel(slog.LevelWarn)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("embedded %d chunks", 3)

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "embedded 3 chunks")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden")
	Info("also hidden")

	assert.Empty(t, buf.String())
}

func TestWarnAndError_AlwaysLogged(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("slow provider: %s", "openai")
	Error("store down")

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "slow provider: openai")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestSetQuietLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetQuietLevel(slog.LevelInfo)

	Info("listening on %s", ":8000")
	Debug("still hidden")

	assert.Contains(t, buf.String(), "listening on :8000")
	assert.NotContains(t, buf.String(), "still hidden")
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Section("Ingest")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Section("Ingest")
	assert.Equal(t, "\n=== Ingest ===\n", buf.String())
}
