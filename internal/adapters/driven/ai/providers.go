package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Providers builds each external client on first use and shares it for
// the life of the process. Commands that never embed or generate never
// touch those providers, so a missing API key only fails the command
// that needs it.
type Providers struct {
	settings domain.AppSettings
	db       *sqlite.Store

	embedOnce sync.Once
	embed     driven.EmbeddingService
	embedErr  error

	llmOnce sync.Once
	llm     driven.LLMService
	llmErr  error

	storeOnce sync.Once
	store     driven.VectorStore
	storeErr  error
}

// NewProviders captures the settings; nothing is constructed yet.
func NewProviders(settings domain.AppSettings, db *sqlite.Store) *Providers {
	return &Providers{settings: settings, db: db}
}

// Embedding returns the embedding client, building it once.
func (p *Providers) Embedding() (driven.EmbeddingService, error) {
	p.embedOnce.Do(func() {
		p.embed, p.embedErr = CreateEmbeddingService(&p.settings.Embedding)
	})
	return p.embed, p.embedErr
}

// LLM returns the generation client, building it once.
func (p *Providers) LLM() (driven.LLMService, error) {
	p.llmOnce.Do(func() {
		p.llm, p.llmErr = CreateLLMService(&p.settings.LLM)
	})
	return p.llm, p.llmErr
}

// VectorStore returns the vector store client, building it once.
func (p *Providers) VectorStore() (driven.VectorStore, error) {
	p.storeOnce.Do(func() {
		p.store, p.storeErr = CreateVectorStore(&p.settings.VectorStore, p.db)
	})
	return p.store, p.storeErr
}

// EmbeddingService returns a port that resolves the client on each call.
func (p *Providers) EmbeddingService() driven.EmbeddingService {
	return &lazyEmbedding{p: p}
}

// LLMService returns a port that resolves the client on each call.
func (p *Providers) LLMService() driven.LLMService {
	return &lazyLLM{p: p}
}

// Store returns a port that resolves the vector store on each call.
func (p *Providers) Store() driven.VectorStore {
	return &lazyStore{p: p}
}

// Close closes whichever clients were built. It waits for any build in
// progress; providers not yet built fail on later use.
func (p *Providers) Close() error {
	p.embedOnce.Do(func() {
		p.embedErr = fmt.Errorf("%w: providers closed", domain.ErrEmbeddingUnavailable)
	})
	p.llmOnce.Do(func() {
		p.llmErr = fmt.Errorf("%w: providers closed", domain.ErrGenerationFailed)
	})
	p.storeOnce.Do(func() {
		p.storeErr = fmt.Errorf("%w: providers closed", domain.ErrIndexUnavailable)
	})

	var errs []error
	if p.embed != nil {
		errs = append(errs, p.embed.Close())
	}
	if p.llm != nil {
		errs = append(errs, p.llm.Close())
	}
	if p.store != nil {
		errs = append(errs, p.store.Close())
	}
	return errors.Join(errs...)
}

// lazyEmbedding defers construction of the embedding client.
type lazyEmbedding struct{ p *Providers }

var _ driven.EmbeddingService = (*lazyEmbedding)(nil)

func (l *lazyEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	svc, err := l.p.Embedding()
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, text)
}

func (l *lazyEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	svc, err := l.p.Embedding()
	if err != nil {
		return nil, err
	}
	return svc.EmbedBatch(ctx, texts)
}

func (l *lazyEmbedding) Dimensions() int {
	svc, err := l.p.Embedding()
	if err != nil {
		return 0
	}
	return svc.Dimensions()
}

func (l *lazyEmbedding) ModelName() string {
	return l.p.settings.Embedding.Model
}

func (l *lazyEmbedding) Integrated() bool {
	return l.p.settings.Embedding.Provider == domain.AIProviderIntegrated
}

func (l *lazyEmbedding) Ping(ctx context.Context) error {
	svc, err := l.p.Embedding()
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

func (l *lazyEmbedding) Close() error { return nil }

// lazyLLM defers construction of the generation client.
type lazyLLM struct{ p *Providers }

var _ driven.LLMService = (*lazyLLM)(nil)

func (l *lazyLLM) Chat(ctx context.Context, messages []domain.ChatMessage, opts driven.ChatOptions) (string, error) {
	svc, err := l.p.LLM()
	if err != nil {
		return "", err
	}
	return svc.Chat(ctx, messages, opts)
}

func (l *lazyLLM) ModelName() string {
	return l.p.settings.LLM.Model
}

func (l *lazyLLM) Ping(ctx context.Context) error {
	svc, err := l.p.LLM()
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

func (l *lazyLLM) Close() error { return nil }

// lazyStore defers construction of the vector store client.
type lazyStore struct{ p *Providers }

var _ driven.VectorStore = (*lazyStore)(nil)

func (l *lazyStore) Upsert(ctx context.Context, ns string, records []domain.VectorRecord) error {
	store, err := l.p.VectorStore()
	if err != nil {
		return err
	}
	return store.Upsert(ctx, ns, records)
}

func (l *lazyStore) Query(
	ctx context.Context, ns string, q domain.VectorQuery, topK int,
) ([]domain.VectorMatch, error) {
	store, err := l.p.VectorStore()
	if err != nil {
		return nil, err
	}
	return store.Query(ctx, ns, q, topK)
}

func (l *lazyStore) Dimensions() int {
	return l.p.settings.VectorStore.Dimensions
}

func (l *lazyStore) Ping(ctx context.Context) error {
	store, err := l.p.VectorStore()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

func (l *lazyStore) Close() error { return nil }
