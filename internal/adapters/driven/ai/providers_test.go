package ai

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

func memorySettings() domain.AppSettings {
	settings := domain.DefaultAppSettings()
	settings.VectorStore.Backend = domain.VectorBackendMemory
	return settings
}

func TestProviders_BuildOnce(t *testing.T) {
	p := NewProviders(memorySettings(), nil)

	var wg sync.WaitGroup
	stores := make([]driven.VectorStore, 10)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := p.VectorStore()
			assert.NoError(t, err)
			stores[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range stores[1:] {
		assert.Same(t, stores[0], s)
	}
}

func TestProviders_LazyPortsRoundTrip(t *testing.T) {
	p := NewProviders(memorySettings(), nil)
	defer p.Close()
	embedder := p.EmbeddingService()
	store := p.Store()
	ctx := context.Background()

	assert.Equal(t, domain.DefaultLocalEmbeddingDimensions, embedder.Dimensions())
	assert.False(t, embedder.Integrated())
	assert.Equal(t, "feature-hash", embedder.ModelName())

	vec, err := embedder.Embed(ctx, "refund policy")
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, "acme", []domain.VectorRecord{{ID: "r1", Vector: vec}}))

	matches, err := store.Query(ctx, "acme", domain.VectorQuery{Vector: vec}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "r1", matches[0].ID)
	assert.NoError(t, store.Ping(ctx))
}

func TestProviders_ErrorsSurfaceOnUse(t *testing.T) {
	settings := memorySettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderAnthropic}
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}
	p := NewProviders(settings, nil)

	_, err := p.LLMService().Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = p.EmbeddingService().Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Zero(t, p.EmbeddingService().Dimensions())

	// The store still works without the broken providers.
	_, err = p.VectorStore()
	assert.NoError(t, err)
}

func TestProviders_IntegratedFlag(t *testing.T) {
	settings := memorySettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderIntegrated, Model: "llama-text-embed-v2"}
	p := NewProviders(settings, nil)

	assert.True(t, p.EmbeddingService().Integrated())
	assert.Equal(t, "llama-text-embed-v2", p.EmbeddingService().ModelName())
}

func TestProviders_CloseUnbuilt(t *testing.T) {
	p := NewProviders(memorySettings(), nil)

	assert.NoError(t, p.Close())
}

func TestProviders_CloseWhileInUse(t *testing.T) {
	p := NewProviders(memorySettings(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Store().Query(ctx, "acme", domain.VectorQuery{Vector: []float32{1}}, 1)
		}()
	}
	assert.NoError(t, p.Close())
	wg.Wait()
}

func TestProviders_UseAfterClose(t *testing.T) {
	p := NewProviders(memorySettings(), nil)
	require.NoError(t, p.Close())

	_, err := p.Embedding()
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	_, err = p.LLM()
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	_, err = p.VectorStore()
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
