package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

var (
	searchLimit  int
	searchTenant string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find the most relevant chunks",
	Long: `Embeds the query and returns the closest chunks from the assistant's
knowledge base, ranked by cosine similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results (1-20)")
	tenantFlag(searchCmd, &searchTenant)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	results, err := retrievalService.Retrieve(cmd.Context(), args[0], searchTenant, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return render(cmd, results, func() { outputSearchTable(cmd, results) })
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, r.Source, r.ChunkIndex, r.Score)
		cmd.Printf("      %s\n", snippet(r.Content, 200))
		cmd.Println()
	}
}

// snippet collapses whitespace and truncates to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
