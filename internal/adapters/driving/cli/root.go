// Package cli implements the sercha-kb command line on top of cobra.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-kb/internal/logger"
)

// version is overridden at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// ConfigValidator checks provider settings against the live services.
type ConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
	ValidateVectorStore(config *domain.VectorStoreSettings) error
}

// Services are the driving ports the commands dispatch to.
type Services struct {
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Document  driving.DocumentService
	Settings  driving.SettingsService
	Validator ConfigValidator
}

var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	documentService  driving.DocumentService
	settingsService  driving.SettingsService
	configValidator  ConfigValidator
)

// Global flags.
var (
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "sercha-kb",
	Short: "A retrieval-augmented knowledge base",
	Long: `sercha-kb ingests documents into per-assistant knowledge bases and answers
questions grounded in the most relevant passages.

Run 'sercha-kb serve' for the HTTP API, 'sercha-kb mcp' for AI assistants,
or use the commands below directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		switch outputFormat {
		case outputText, outputJSON, outputYAML:
			return nil
		default:
			return fmt.Errorf("unknown output format %q (want text, json or yaml)", outputFormat)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputText, "output format: text, json or yaml")
}

// SetServices injects the core services used by every command.
func SetServices(s Services) {
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	answerService = s.Answer
	documentService = s.Document
	settingsService = s.Settings
	configValidator = s.Validator
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
