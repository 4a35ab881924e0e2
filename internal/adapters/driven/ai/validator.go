package ai

import (
	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// ConfigValidator checks provider configurations by connecting to them.
type ConfigValidator struct {
	db *sqlite.Store
}

// NewConfigValidator creates a validator. db backs the sqlite vector
// backend and may be nil when that backend is not in use.
func NewConfigValidator(db *sqlite.Store) *ConfigValidator {
	return &ConfigValidator{db: db}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}

// ValidateVectorStore validates a vector store configuration by pinging it.
func (v *ConfigValidator) ValidateVectorStore(config *domain.VectorStoreSettings) error {
	return ValidateVectorStoreConfig(config, v.db)
}
