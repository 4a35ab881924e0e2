package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-kb/internal/core/services"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMaskIfSet(t *testing.T) {
	assert.Empty(t, maskIfSet(""))
	assert.Equal(t, "****", maskIfSet("short"))
}

func withSettingsInput(t *testing.T, input string) {
	t.Helper()
	original := settingsInput
	settingsInput = strings.NewReader(input)
	t.Cleanup(func() { settingsInput = original })
}

func TestSettingsShow_Defaults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "[Vector Store]")
	assert.Contains(t, out, "[Chunking]")
	assert.Contains(t, out, "Size: 512 tokens")
	assert.Contains(t, out, "Overlap: 20%")
	assert.Contains(t, out, "Address: :8000")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_IsDefaultSubcommand(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
}

func TestSettingsShow_WarnsWhenInvalid(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	require.NoError(t, ts.config.Set(services.KeyVectorBackend, "qdrant"))

	out, err := runCommand(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "sercha-kb settings embedding|llm|vector")
}

func TestSettingsShow_JSONMasksKeys(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	require.NoError(t, ts.config.Set(services.KeyEmbedProvider, "openai"))
	require.NoError(t, ts.config.Set(services.KeyEmbedAPIKey, "sk-1234567890abcdef"))

	out, err := runCommand(t, "settings", "show", "-o", "json")

	require.NoError(t, err)
	assert.Contains(t, out, `"provider": "openai"`)
	assert.Contains(t, out, `"api_key": "sk-1...cdef"`)
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, `"valid": true`)
}

func TestSettingsEmbedding_WithFlags(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()

	out, err := runCommand(t, "settings", "embedding", "--provider", "openai", "--api-key", "sk-test")

	require.NoError(t, err)
	assert.Contains(t, out, "Validating configuration... OK")
	assert.Contains(t, out, "Embedding provider configured: OpenAI (cloud) (text-embedding-3-small)")
	assert.Equal(t, "openai", ts.config.GetString(services.KeyEmbedProvider))
	assert.Equal(t, "sk-test", ts.config.GetString(services.KeyEmbedAPIKey))
	assert.Equal(t, 1, ts.validator.calls)
}

func TestSettingsEmbedding_Interactive(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	withSettingsInput(t, "3\n\nsk-typed\n")

	out, err := runCommand(t, "settings", "embedding")

	require.NoError(t, err)
	assert.Contains(t, out, "Select Embedding Provider")
	assert.Contains(t, out, "3. OpenAI (cloud)")
	assert.Equal(t, "openai", ts.config.GetString(services.KeyEmbedProvider))
	assert.Equal(t, "text-embedding-3-small", ts.config.GetString(services.KeyEmbedModel))
	assert.Equal(t, "sk-typed", ts.config.GetString(services.KeyEmbedAPIKey))
}

func TestSettingsEmbedding_MissingAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	withSettingsInput(t, "\n")

	_, err := runCommand(t, "settings", "embedding", "--provider", "openai")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsEmbedding_ValidationFailure(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	ts.validator.err = errors.New("connection refused")

	out, err := runCommand(t, "settings", "embedding", "--provider", "ollama")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding configuration validation failed")
	assert.Contains(t, out, "FAILED: connection refused")
}

func TestSettingsEmbedding_SkipValidate(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	ts.validator.err = errors.New("unreachable")

	_, err := runCommand(t, "settings", "embedding", "--provider", "ollama", "--skip-validate")

	require.NoError(t, err)
	assert.Zero(t, ts.validator.calls)
	assert.Equal(t, "ollama", ts.config.GetString(services.KeyEmbedProvider))
}

func TestSettingsLLM_WithFlags(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()

	out, err := runCommand(t, "settings", "llm", "--provider", "anthropic", "--model", "claude-x", "--api-key", "sk-ant")

	require.NoError(t, err)
	assert.Contains(t, out, "LLM provider configured: Anthropic (cloud) (claude-x)")
	assert.Equal(t, "anthropic", ts.config.GetString(services.KeyLLMProvider))
	assert.Equal(t, "claude-x", ts.config.GetString(services.KeyLLMModel))
}

func TestSettingsLLM_RejectsEmbeddingOnlyProvider(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "settings", "llm", "--provider", "integrated")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `provider "integrated" cannot be used for llm`)
}

func TestSettingsVector_WithFlags(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()

	out, err := runCommand(t, "settings", "vector", "--backend", "qdrant", "--url", "http://qdrant:6333")

	require.NoError(t, err)
	assert.Contains(t, out, "Vector store configured")
	assert.Equal(t, "qdrant", ts.config.GetString(services.KeyVectorBackend))
	assert.Equal(t, "http://qdrant:6333", ts.config.GetString(services.KeyVectorURL))
	assert.Equal(t, 1, ts.validator.calls)
}

func TestSettingsVector_Interactive(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	withSettingsInput(t, "4\nredis://localhost:6379\n")

	_, err := runCommand(t, "settings", "vector")

	require.NoError(t, err)
	assert.Equal(t, "redis", ts.config.GetString(services.KeyVectorBackend))
	assert.Equal(t, "redis://localhost:6379", ts.config.GetString(services.KeyVectorURL))
}

func TestSettingsVector_UnknownBackend(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "settings", "vector", "--backend", "faiss")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown vector backend "faiss"`)
}
