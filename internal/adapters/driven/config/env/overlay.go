// Package env overlays process environment variables on a ConfigStore.
//
// The variable names are those the hosted service has always read, so an
// existing deployment's environment configures this binary unchanged.
// Environment values win over the underlying store. Writes go to the
// underlying store only.
package env

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Environment variable names.
const (
	VarLLMProvider       = "LLM_PROVIDER"
	VarOpenAIAPIKey      = "OPENAI_API_KEY"
	VarOpenAIModel       = "OPENAI_MODEL"
	VarAnthropicAPIKey   = "ANTHROPIC_API_KEY"
	VarOllamaBaseURL     = "OLLAMA_BASE_URL"
	VarOllamaModel       = "OLLAMA_MODEL"
	VarEmbeddingProvider = "EMBEDDING_PROVIDER"
	VarEmbeddingModel    = "EMBEDDING_MODEL"
	VarVectorBackend     = "VECTOR_BACKEND"
	VarPineconeAPIKey    = "PINECONE_API_KEY"
	VarPineconeHost      = "PINECONE_HOST"
	VarQdrantURL         = "QDRANT_URL"
	VarQdrantAPIKey      = "QDRANT_API_KEY"
	VarRedisURL          = "REDIS_URL"
	VarServiceAPIKey     = "KB_SERVICE_API_KEY"
	VarPort              = "PORT"
)

// resolver derives a config value from the environment. It may consult
// other already-resolved keys through get.
type resolver func(lookup func(string) (string, bool), get func(string) string) (string, bool)

// Overlay decorates a ConfigStore with environment values.
type Overlay struct {
	driven.ConfigStore
	lookup    func(string) (string, bool)
	resolvers map[string]resolver
}

// NewOverlay wraps base, reading variables from the process environment.
func NewOverlay(base driven.ConfigStore) *Overlay {
	return NewOverlayWithLookup(base, os.LookupEnv)
}

// NewOverlayWithLookup wraps base with a custom variable source.
func NewOverlayWithLookup(base driven.ConfigStore, lookup func(string) (string, bool)) *Overlay {
	return &Overlay{
		ConfigStore: base,
		lookup:      lookup,
		resolvers:   defaultResolvers(),
	}
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func direct(name string) resolver {
	return func(lookup func(string) (string, bool), _ func(string) string) (string, bool) {
		v, ok := lookup(name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
}

// when applies r only if key currently resolves to one of values.
func when(key string, values []string, r resolver) resolver {
	return func(lookup func(string) (string, bool), get func(string) string) (string, bool) {
		current := get(key)
		for _, v := range values {
			if current == v {
				return r(lookup, get)
			}
		}
		return "", false
	}
}

func first(rs ...resolver) resolver {
	return func(lookup func(string) (string, bool), get func(string) string) (string, bool) {
		for _, r := range rs {
			if v, ok := r(lookup, get); ok {
				return v, true
			}
		}
		return "", false
	}
}

func defaultResolvers() map[string]resolver {
	openai := []string{"openai"}
	ollama := []string{"ollama"}

	return map[string]resolver{
		"llm.provider": direct(VarLLMProvider),
		"llm.api_key": first(
			when("llm.provider", openai, direct(VarOpenAIAPIKey)),
			when("llm.provider", []string{"anthropic"}, direct(VarAnthropicAPIKey)),
		),
		"llm.model": first(
			when("llm.provider", openai, direct(VarOpenAIModel)),
			when("llm.provider", ollama, direct(VarOllamaModel)),
		),
		"llm.base_url": when("llm.provider", ollama, direct(VarOllamaBaseURL)),

		"embedding.provider": func(lookup func(string) (string, bool), get func(string) string) (string, bool) {
			v, ok := direct(VarEmbeddingProvider)(lookup, get)
			if v == "pinecone" {
				// Pinecone embeds server-side.
				v = "integrated"
			}
			return v, ok
		},
		"embedding.model":    direct(VarEmbeddingModel),
		"embedding.api_key":  when("embedding.provider", openai, direct(VarOpenAIAPIKey)),
		"embedding.base_url": when("embedding.provider", ollama, direct(VarOllamaBaseURL)),

		"vector_store.backend": first(
			direct(VarVectorBackend),
			func(lookup func(string) (string, bool), get func(string) string) (string, bool) {
				if _, ok := direct(VarPineconeHost)(lookup, get); ok {
					return "pinecone", true
				}
				return "", false
			},
		),
		"vector_store.url": first(
			when("vector_store.backend", []string{"pinecone"}, direct(VarPineconeHost)),
			when("vector_store.backend", []string{"qdrant"}, direct(VarQdrantURL)),
			when("vector_store.backend", []string{"redis"}, direct(VarRedisURL)),
		),
		"vector_store.api_key": first(
			when("vector_store.backend", []string{"pinecone"}, direct(VarPineconeAPIKey)),
			when("vector_store.backend", []string{"qdrant"}, direct(VarQdrantAPIKey)),
		),

		"server.api_key": direct(VarServiceAPIKey),
		"server.addr": func(lookup func(string) (string, bool), get func(string) string) (string, bool) {
			port, ok := direct(VarPort)(lookup, get)
			if !ok {
				return "", false
			}
			return ":" + port, true
		},
	}
}

// Get returns the environment value for key when one applies, otherwise
// the underlying store's value.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.resolve(key); ok {
		return v, true
	}
	return o.ConfigStore.Get(key)
}

func (o *Overlay) resolve(key string) (string, bool) {
	r, ok := o.resolvers[key]
	if !ok {
		return "", false
	}
	return r(o.lookup, o.GetString)
}

// GetString retrieves a string configuration value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.resolve(key); ok {
		return v
	}
	return o.ConfigStore.GetString(key)
}

// GetInt retrieves an integer configuration value.
func (o *Overlay) GetInt(key string) int {
	if v, ok := o.resolve(key); ok {
		n, _ := strconv.Atoi(v)
		return n
	}
	return o.ConfigStore.GetInt(key)
}

// GetFloat retrieves a floating point configuration value.
func (o *Overlay) GetFloat(key string) float64 {
	if v, ok := o.resolve(key); ok {
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return o.ConfigStore.GetFloat(key)
}

// GetBool retrieves a boolean configuration value.
func (o *Overlay) GetBool(key string) bool {
	if v, ok := o.resolve(key); ok {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return o.ConfigStore.GetBool(key)
}

// Overridden lists the config keys currently supplied by the environment.
func (o *Overlay) Overridden() []string {
	var keys []string
	for key := range o.resolvers {
		if _, ok := o.resolve(key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
