package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyEmbedProvider, "openai")
	_ = store.Set(KeyEmbedModel, "text-embedding-3-large")
	_ = store.Set(KeyVectorBackend, "qdrant")
	_ = store.Set(KeyVectorURL, "http://qdrant:6333")
	_ = store.Set(KeyChunkSize, int64(256))
	_ = store.Set(KeyChunkOverlap, 0.1)
	_ = store.Set(KeyServerRateLimit, 5.0)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Zero(t, settings.Embedding.Dimensions)
	assert.Equal(t, domain.VectorBackendQdrant, settings.VectorStore.Backend)
	assert.Equal(t, "http://qdrant:6333", settings.VectorStore.URL)
	assert.Equal(t, 256, settings.Chunking.Size)
	assert.InDelta(t, 0.1, settings.Chunking.Overlap, 1e-9)
	assert.InDelta(t, 5.0, settings.Server.RateLimit, 1e-9)
}

func TestSettingsService_Get_ZeroOverlapIsKept(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyChunkOverlap, 0.0)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Zero(t, settings.Chunking.Overlap)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyEmbedProvider, "invalid_provider")
	_ = store.Set(KeyLLMProvider, "nope")
	_ = store.Set(KeyVectorBackend, "faiss")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.VectorStore.Backend, settings.VectorStore.Backend)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.LLM.Provider = domain.AIProviderAnthropic
	settings.LLM.APIKey = "sk-ant"
	settings.VectorStore.Backend = domain.VectorBackendRedis
	settings.VectorStore.URL = "redis://localhost:6379"
	settings.Chunking.Size = 300

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "anthropic", store.GetString(KeyLLMProvider))
	assert.Equal(t, "sk-ant", store.GetString(KeyLLMAPIKey))
	assert.Equal(t, "redis", store.GetString(KeyVectorBackend))
	assert.Equal(t, 300, store.GetInt(KeyChunkSize))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings.LLM, got.LLM)
	assert.Equal(t, settings.VectorStore, got.VectorStore)
	assert.Equal(t, settings.Chunking, got.Chunking)
}

func TestSettingsService_Save_EmptyAPIKeyNotWritten(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	_, ok := store.Get(KeyEmbedAPIKey)
	assert.False(t, ok)
	_, ok = store.Get(KeyLLMAPIKey)
	assert.False(t, ok)
}

func TestSettingsService_SetEmbeddingProvider_OpenAI(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-test"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.Zero(t, settings.Embedding.Dimensions)
}

func TestSettingsService_SetEmbeddingProvider_OllamaSetsBaseURL(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "mxbai-embed-large", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "mxbai-embed-large", settings.Embedding.Model)
	assert.Equal(t, domain.DefaultOllamaBaseURL, settings.Embedding.BaseURL)
}

func TestSettingsService_SetEmbeddingProvider_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Error(t, service.SetEmbeddingProvider("bogus", "", ""))
	assert.Error(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key"))
	assert.Error(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""))
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		provider    domain.AIProvider
		apiKey      string
		wantBaseURL string
	}{
		{domain.AIProviderLocal, "", domain.DefaultLocalLLMBaseURL},
		{domain.AIProviderOllama, "", domain.DefaultOllamaBaseURL},
		{domain.AIProviderOpenAI, "sk", ""},
		{domain.AIProviderAnthropic, "sk-ant", ""},
	}

	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())

			require.NoError(t, service.SetLLMProvider(tt.provider, "", tt.apiKey))

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.LLM.Provider)
			assert.Equal(t, domain.DefaultLLMModels()[tt.provider], settings.LLM.Model)
			assert.Equal(t, tt.wantBaseURL, settings.LLM.BaseURL)
		})
	}
}

func TestSettingsService_SetLLMProvider_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Error(t, service.SetLLMProvider("bogus", "", ""))
	assert.Error(t, service.SetLLMProvider(domain.AIProviderIntegrated, "", ""))
	assert.Error(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", ""))
}

func TestSettingsService_SetVectorBackend(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.SetVectorBackend(domain.VectorBackendPinecone, "https://idx.pinecone.io", "pc-key"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.VectorBackendPinecone, settings.VectorStore.Backend)
	assert.Equal(t, "https://idx.pinecone.io", settings.VectorStore.URL)
	assert.Equal(t, "pc-key", settings.VectorStore.APIKey)

	assert.Error(t, service.SetVectorBackend("faiss", "", ""))
	assert.Error(t, service.SetVectorBackend(domain.VectorBackendQdrant, "", ""))
}

func TestSettingsService_Validate_Defaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.NoError(t, service.Validate())
}

func TestSettingsService_Validate_Failures(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{"openai embedding without key", map[string]any{KeyEmbedProvider: "openai"}},
		{"anthropic llm without key", map[string]any{KeyLLMProvider: "anthropic"}},
		{"remote backend without url", map[string]any{KeyVectorBackend: "qdrant"}},
		{"pinecone without key", map[string]any{KeyVectorBackend: "pinecone", KeyVectorURL: "https://x"}},
		{"integrated on sqlite", map[string]any{KeyEmbedProvider: "integrated"}},
		{"overlap of one", map[string]any{KeyChunkOverlap: 1.0}},
		{"zero chunk size", map[string]any{KeyChunkSize: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.set {
				_ = store.Set(k, v)
			}

			err := NewSettingsService(store).Validate()

			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestSettingsService_Validate_IntegratedOnPinecone(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyEmbedProvider, "integrated")
	_ = store.Set(KeyVectorBackend, "pinecone")
	_ = store.Set(KeyVectorURL, "https://idx.pinecone.io")
	_ = store.Set(KeyVectorAPIKey, "pc-key")

	assert.NoError(t, NewSettingsService(store).Validate())
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
