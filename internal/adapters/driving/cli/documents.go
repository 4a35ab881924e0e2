package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	documentsTenant     string
	documentsShowTenant string
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Inspect ingested documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the documents of a knowledge base",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [document-id]",
	Short: "Show one document's metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

func init() {
	tenantFlag(documentsListCmd, &documentsTenant)
	tenantFlag(documentsShowCmd, &documentsShowTenant)
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context(), documentsTenant)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	return render(cmd, docs, func() {
		if len(docs) == 0 {
			cmd.Println("No documents found.")
			return
		}
		for i := range docs {
			d := &docs[i]
			cmd.Printf("  %s  %-30s %4d chunks  %s\n",
				d.ID, d.Filename, d.ChunkCount, d.CreatedAt.Local().Format(time.DateTime))
		}
	})
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), documentsShowTenant, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	return render(cmd, doc, func() {
		cmd.Printf("ID:           %s\n", doc.ID)
		cmd.Printf("Filename:     %s\n", doc.Filename)
		cmd.Printf("Content type: %s\n", doc.ContentType)
		cmd.Printf("Assistant:    %s\n", doc.TenantID)
		cmd.Printf("Size:         %d bytes\n", doc.Size)
		cmd.Printf("Chunks:       %d\n", doc.ChunkCount)
		cmd.Printf("Created:      %s\n", doc.CreatedAt.Local().Format(time.RFC3339))
	})
}
