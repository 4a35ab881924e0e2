// Command sercha-kb runs the knowledge base CLI, HTTP API and MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/config/env"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-kb/internal/core/services"
	"github.com/custodia-labs/sercha-kb/internal/logger"
	"github.com/custodia-labs/sercha-kb/internal/normalisers"
	"github.com/custodia-labs/sercha-kb/internal/postprocessors/chunker"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := env.LoadDotEnv(); err != nil {
		logger.Warn("loading .env: %v", err)
	}

	baseConfig, err := file.NewConfigStore("")
	if err != nil {
		return report("opening config", err)
	}
	configStore := env.NewOverlay(baseConfig)
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return report("loading settings", err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return report("opening prompts", err)
	}

	db, err := sqlite.NewStore("")
	if err != nil {
		return report("opening database", err)
	}
	defer db.Close()

	providers := ai.NewProviders(*settings, db)
	defer providers.Close()

	chunks, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		return report("configuring chunker", err)
	}

	embedder := providers.EmbeddingService()
	store := providers.Store()
	docStore := db.DocumentStore()
	retrieval := services.NewRetrievalService(embedder, store)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingest:    services.NewIngestService(normalisers.NewDefaultRegistry(), chunks, embedder, store, docStore),
		Retrieval: retrieval,
		Answer:    services.NewAnswerService(retrieval, providers.LLMService(), prompts),
		Document:  services.NewDocumentService(docStore),
		Settings:  settingsService,
		Validator: ai.NewConfigValidator(db),
	})

	// cobra has already printed command errors.
	return cli.Execute(ctx)
}

func report(step string, err error) error {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", step, err)
	return err
}
