package services

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEmbedProvider   = "embedding.provider"
	KeyEmbedModel      = "embedding.model"
	KeyEmbedBaseURL    = "embedding.base_url"
	KeyEmbedAPIKey     = "embedding.api_key"
	KeyEmbedDims       = "embedding.dimensions"
	KeyEmbedRPS        = "embedding.requests_per_second"
	KeyLLMProvider     = "llm.provider"
	KeyLLMModel        = "llm.model"
	KeyLLMBaseURL      = "llm.base_url"
	KeyLLMAPIKey       = "llm.api_key"
	KeyVectorBackend   = "vector_store.backend"
	KeyVectorURL       = "vector_store.url"
	KeyVectorAPIKey    = "vector_store.api_key"
	KeyVectorDims      = "vector_store.dimensions"
	KeyChunkSize       = "chunking.size"
	KeyChunkOverlap    = "chunking.overlap"
	KeyServerAddr      = "server.addr"
	KeyServerAPIKey    = "server.api_key"
	KeyServerMaxUpload = "server.max_upload_mb"
	KeyServerRateLimit = "server.rate_limit"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, filling gaps with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := domain.AIProvider(s.getString(KeyEmbedProvider, defaults.Embedding.Provider.String()))
	if !embedProvider.IsValid() {
		embedProvider = defaults.Embedding.Provider
	}
	llmProvider := domain.AIProvider(s.getString(KeyLLMProvider, defaults.LLM.Provider.String()))
	if !llmProvider.IsValid() {
		llmProvider = defaults.LLM.Provider
	}
	backend := domain.VectorBackend(s.getString(KeyVectorBackend, defaults.VectorStore.Backend.String()))
	if !backend.IsValid() {
		backend = defaults.VectorStore.Backend
	}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(KeyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:           s.configStore.GetString(KeyEmbedBaseURL),
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			Dimensions:        s.configStore.GetInt(KeyEmbedDims),
			RequestsPerSecond: s.configStore.GetFloat(KeyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(KeyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:  s.configStore.GetString(KeyLLMBaseURL),
			APIKey:   s.configStore.GetString(KeyLLMAPIKey),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:    backend,
			URL:        s.configStore.GetString(KeyVectorURL),
			APIKey:     s.configStore.GetString(KeyVectorAPIKey),
			Dimensions: s.configStore.GetInt(KeyVectorDims),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(KeyChunkSize, defaults.Chunking.Size),
			Overlap: s.getFloat(KeyChunkOverlap, defaults.Chunking.Overlap),
		},
		Server: domain.ServerSettings{
			Addr:        s.getString(KeyServerAddr, defaults.Server.Addr),
			APIKey:      s.configStore.GetString(KeyServerAPIKey),
			MaxUploadMB: s.getInt(KeyServerMaxUpload, defaults.Server.MaxUploadMB),
			RateLimit:   s.configStore.GetFloat(KeyServerRateLimit),
		},
	}

	if settings.Embedding.Provider == domain.AIProviderLocal && settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = domain.DefaultLocalEmbeddingDimensions
	}
	if settings.LLM.Provider == domain.AIProviderLocal && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = domain.DefaultLocalLLMBaseURL
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{KeyEmbedProvider, settings.Embedding.Provider.String(), false},
		{KeyEmbedModel, settings.Embedding.Model, false},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{KeyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{KeyEmbedDims, settings.Embedding.Dimensions, false},
		{KeyLLMProvider, settings.LLM.Provider.String(), false},
		{KeyLLMModel, settings.LLM.Model, false},
		{KeyLLMBaseURL, settings.LLM.BaseURL, false},
		{KeyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{KeyVectorBackend, settings.VectorStore.Backend.String(), false},
		{KeyVectorURL, settings.VectorStore.URL, false},
		{KeyVectorAPIKey, settings.VectorStore.APIKey, settings.VectorStore.APIKey == ""},
		{KeyVectorDims, settings.VectorStore.Dimensions, false},
		{KeyChunkSize, settings.Chunking.Size, false},
		{KeyChunkOverlap, settings.Chunking.Overlap, false},
		{KeyServerAddr, settings.Server.Addr, false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = settings.Embedding.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.APIKey = apiKey
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	switch provider {
	case domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = domain.DefaultOllamaBaseURL
		}
	default:
		settings.Embedding.BaseURL = ""
	}

	// Width follows the model unless the local hasher is in use.
	settings.Embedding.Dimensions = 0
	if provider == domain.AIProviderLocal {
		settings.Embedding.Dimensions = domain.DefaultLocalEmbeddingDimensions
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support chat completion", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = settings.LLM.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.APIKey = apiKey
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	switch provider {
	case domain.AIProviderLocal:
		settings.LLM.BaseURL = domain.DefaultLocalLLMBaseURL
	case domain.AIProviderOllama:
		settings.LLM.BaseURL = domain.DefaultOllamaBaseURL
	default:
		settings.LLM.BaseURL = ""
	}

	return s.Save(settings)
}

// SetVectorBackend configures the vector store.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend, url, apiKey string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", backend)
	}
	if backend.IsRemote() && url == "" {
		return fmt.Errorf("URL required for %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.VectorStore.Backend = backend
	settings.VectorStore.URL = url
	if apiKey != "" {
		settings.VectorStore.APIKey = apiKey
	}
	return s.Save(settings)
}

// Validate checks that the provider combination can serve requests.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider))
	}
	if settings.VectorStore.Backend.IsRemote() && settings.VectorStore.URL == "" {
		errs = append(errs, fmt.Errorf("vector backend %s requires a URL", settings.VectorStore.Backend))
	}
	if settings.VectorStore.Backend == domain.VectorBackendPinecone && settings.VectorStore.APIKey == "" {
		errs = append(errs, errors.New("vector backend pinecone requires an API key"))
	}
	if settings.Embedding.Provider == domain.AIProviderIntegrated &&
		!settings.VectorStore.Backend.SupportsIntegratedEmbedding() {
		errs = append(errs, fmt.Errorf("vector backend %s cannot embed server-side", settings.VectorStore.Backend))
	}
	if settings.Chunking.Overlap < 0 || settings.Chunking.Overlap >= 1 {
		errs = append(errs, fmt.Errorf("chunk overlap must be in [0, 1), got %g", settings.Chunking.Overlap))
	}
	if settings.Chunking.Size < 1 {
		errs = append(errs, fmt.Errorf("chunk size must be positive, got %d", settings.Chunking.Size))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetFloat(key)
	}
	return defaultVal
}

func contains[T comparable](items []T, item T) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
