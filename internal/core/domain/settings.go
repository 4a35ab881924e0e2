package domain

const unknownDescription = "Unknown"

// AIProvider identifies a service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal runs in-process for embeddings and targets a local
	// OpenAI-compatible endpoint for generation.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is a local Ollama instance via its native API.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderIntegrated defers embedding to the vector store.
	AIProviderIntegrated AIProvider = "integrated"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderIntegrated:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs on the local machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (in-process / OpenAI-compatible)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderIntegrated:
		return "Integrated (vector store embeds)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies a vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	VectorBackendMemory   VectorBackend = "memory"
	VectorBackendSQLite   VectorBackend = "sqlite"
	VectorBackendQdrant   VectorBackend = "qdrant"
	VectorBackendRedis    VectorBackend = "redis"
	VectorBackendPinecone VectorBackend = "pinecone"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendMemory, VectorBackendSQLite, VectorBackendQdrant, VectorBackendRedis, VectorBackendPinecone:
		return true
	default:
		return false
	}
}

// IsRemote returns true if the backend is reached over the network.
func (b VectorBackend) IsRemote() bool {
	return b == VectorBackendQdrant || b == VectorBackendRedis || b == VectorBackendPinecone
}

// SupportsIntegratedEmbedding returns true if the backend can embed text server-side.
func (b VectorBackend) SupportsIntegratedEmbedding() bool {
	return b == VectorBackendPinecone
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendMemory:
		return "Memory (ephemeral)"
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendQdrant:
		return "Qdrant (REST)"
	case VectorBackendRedis:
		return "Redis (RediSearch)"
	case VectorBackendPinecone:
		return "Pinecone (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and self-hosted gateways).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector width.
	Dimensions int

	// RequestsPerSecond throttles remote embedding calls. Zero disables it.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for local providers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderIntegrated {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	// Backend selects the store implementation.
	Backend VectorBackend

	// URL is the endpoint for remote backends (Qdrant URL, Redis URL, Pinecone index host).
	URL string

	// APIKey authenticates against remote backends that need one.
	APIKey string

	// Dimensions is the configured index width. Zero adopts the width of the
	// first vector written to each namespace.
	Dimensions int
}

// ChunkingSettings controls document segmentation.
type ChunkingSettings struct {
	// Size is the nominal chunk size in tokens.
	Size int

	// Overlap is the fraction of each window repeated in the next chunk.
	Overlap float64
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// APIKey, when set, is required as a bearer token on all API routes.
	APIKey string

	// MaxUploadMB bounds request bodies.
	MaxUploadMB int

	// RateLimit is the per-client request rate. Zero disables limiting.
	RateLimit float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorStore VectorStoreSettings
	Chunking    ChunkingSettings
	Server      ServerSettings
}

// DefaultAppSettings returns settings that work without any external service
// except the local LLM endpoint.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Model:      DefaultEmbeddingModels()[AIProviderLocal],
			Dimensions: DefaultLocalEmbeddingDimensions,
		},
		LLM: LLMSettings{
			Provider: AIProviderLocal,
			Model:    DefaultLLMModels()[AIProviderLocal],
			BaseURL:  DefaultLocalLLMBaseURL,
		},
		VectorStore: VectorStoreSettings{
			Backend: VectorBackendSQLite,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Server: ServerSettings{
			Addr:        DefaultServerAddr,
			MaxUploadMB: 32,
		},
	}
}

// Defaults shared by settings and adapters.
const (
	DefaultChunkSize                = 512
	DefaultChunkOverlap             = 0.2
	DefaultLocalEmbeddingDimensions = 384
	DefaultLocalLLMBaseURL          = "http://localhost:11434/v1"
	DefaultOllamaBaseURL            = "http://localhost:11434"
	DefaultServerAddr               = ":8000"
)

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderIntegrated,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllVectorBackends returns every supported vector backend.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendMemory,
		VectorBackendSQLite,
		VectorBackendQdrant,
		VectorBackendRedis,
		VectorBackendPinecone,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:      "feature-hash",
		AIProviderOllama:     "nomic-embed-text",
		AIProviderOpenAI:     "text-embedding-3-small",
		AIProviderIntegrated: "provider-integrated",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:     "llama3",
		AIProviderOllama:    "llama3",
		AIProviderOpenAI:    "gpt-3.5-turbo",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
