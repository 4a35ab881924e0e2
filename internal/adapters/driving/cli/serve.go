package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driving/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the knowledge base HTTP API.

Endpoints:
  GET  /health
  POST /api/knowledge-base/upload     multipart "file", assistant_id
  POST /api/knowledge-base/search     {"query", "assistant_id", "top_k"}
  POST /api/knowledge-base/chat       {"query", "assistant_id", "conversation_history", "system_prompt"}
  GET  /api/knowledge-base/documents  ?assistant_id=
  GET  /api/knowledge-base/documents/:id  ?assistant_id=

When server.api_key (KB_SERVICE_API_KEY) is set, every endpoint except
/health requires "Authorization: Bearer <key>".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from settings, e.g. :8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	server := settings.Server
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		server.Addr = addr
	}

	api, err := httpapi.NewServer(&httpapi.Ports{
		Ingest:    ingestService,
		Retrieval: retrievalService,
		Answer:    answerService,
		Document:  documentService,
	}, server)
	if err != nil {
		return err
	}

	cmd.Printf("Knowledge base API listening on %s\n", api.Addr())
	return api.Run(cmd.Context())
}
