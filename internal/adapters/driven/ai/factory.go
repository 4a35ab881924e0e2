// Package ai builds the embedding, generation and vector store adapters
// selected by the application settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/embedding/integrated"
	ollamaembed "github.com/custodia-labs/sercha-kb/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-kb/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/sercha-kb/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/sercha-kb/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sercha-kb/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/storage/sqlite"
	memoryvec "github.com/custodia-labs/sercha-kb/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/vectorstore/pinecone"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/vectorstore/qdrant"
	redisvec "github.com/custodia-labs/sercha-kb/internal/adapters/driven/vectorstore/redis"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service for the settings.
// No network call is made. Missing providers or credentials are reported
// as ErrEmbeddingUnavailable; the adapters check their own credentials.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding provider is not configured", domain.ErrEmbeddingUnavailable)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return hashing.NewEmbeddingService(settings.Dimensions), nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	case domain.AIProviderIntegrated:
		return integrated.NewEmbeddingService(settings.Model), nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q", domain.ErrEmbeddingUnavailable, settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service, taking the
// width from the known-model table when not configured.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// CreateLLMService creates the generation service for the settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: LLM provider is not configured", domain.ErrConfiguration)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		// Any OpenAI-compatible server: llama.cpp, vLLM, LM Studio, Ollama's /v1.
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = domain.DefaultLocalLLMBaseURL
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

// CreateVectorStore creates the vector store for the settings. The sqlite
// backend shares the catalogue database, so db must be non-nil for it.
func CreateVectorStore(settings *domain.VectorStoreSettings, db *sqlite.Store) (driven.VectorStore, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: vector store is not configured", domain.ErrConfiguration)
	}

	switch settings.Backend {
	case domain.VectorBackendMemory:
		return memoryvec.NewStore(settings.Dimensions), nil

	case domain.VectorBackendSQLite:
		if db == nil {
			return nil, fmt.Errorf("%w: sqlite vector store needs an open database", domain.ErrConfiguration)
		}
		return db.VectorStore(settings.Dimensions), nil

	case domain.VectorBackendQdrant:
		return qdrant.NewStore(qdrant.Config{
			URL:        settings.URL,
			APIKey:     settings.APIKey,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.VectorBackendRedis:
		return redisvec.NewStore(redisvec.Config{
			URL:        settings.URL,
			Dimensions: settings.Dimensions,
		})

	case domain.VectorBackendPinecone:
		return pinecone.NewStore(pinecone.Config{
			Host:       settings.URL,
			APIKey:     settings.APIKey,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported vector backend: %s", domain.ErrConfiguration, settings.Backend)
	}
}

// pinger is satisfied by every adapter this package builds.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// ping checks connectivity and closes the service afterwards.
func ping(svc pinger) error {
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateEmbeddingConfig creates the embedding service and pings it.
// This is intended for the settings commands to check credentials as
// they are entered.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	return ping(svc)
}

// ValidateLLMConfig creates the LLM service and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	return ping(svc)
}

// ValidateVectorStoreConfig creates the vector store and pings it.
func ValidateVectorStoreConfig(settings *domain.VectorStoreSettings, db *sqlite.Store) error {
	store, err := CreateVectorStore(settings, db)
	if err != nil {
		return err
	}
	return ping(store)
}
