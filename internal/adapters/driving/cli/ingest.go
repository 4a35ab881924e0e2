package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/normalisers"
)

var (
	ingestTenant      string
	ingestContentType string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add documents to a knowledge base",
	Long: `Extracts, chunks and embeds each file, then stores the chunks in the
assistant's knowledge base. The content type is detected from the file
extension unless --content-type is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	tenantFlag(ingestCmd, &ingestTenant)
	ingestCmd.Flags().StringVar(&ingestContentType, "content-type", "", "override the detected media type")
	rootCmd.AddCommand(ingestCmd)
}

// ingestOutcome is one row of ingest output.
type ingestOutcome struct {
	File string `json:"file"`
	domain.IngestResult
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	outcomes := make([]ingestOutcome, 0, len(args))
	for _, path := range args {
		result, err := ingestFile(cmd, path, ingestTenant, ingestContentType)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		outcomes = append(outcomes, ingestOutcome{File: path, IngestResult: *result})
	}

	return render(cmd, outcomes, func() {
		for _, o := range outcomes {
			cmd.Printf("Ingested %s: %s (%d chunks)\n", o.File, o.DocumentID, o.Chunks)
		}
	})
}

// ingestFile reads path and hands it to the ingest service.
func ingestFile(cmd *cobra.Command, path, tenantID, contentType string) (*domain.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(path)
	if contentType == "" {
		contentType = normalisers.DetectContentType(filename, data)
	}

	return ingestService.Ingest(cmd.Context(), domain.IngestRequest{
		TenantID:    tenantID,
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
}
