package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

var (
	askTenant       string
	askSystemPrompt string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from a knowledge base",
	Long: `Retrieves the passages most relevant to the question and asks the
configured language model to answer from them. The sources used are
listed under the answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	tenantFlag(askCmd, &askTenant)
	askCmd.Flags().StringVar(&askSystemPrompt, "system-prompt", "", "replace the configured system prompt")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.Answer(cmd.Context(), domain.AnswerRequest{
		Query:        args[0],
		TenantID:     askTenant,
		SystemPrompt: askSystemPrompt,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	return render(cmd, answer, func() {
		cmd.Println(answer.Response)
		if len(answer.Sources) == 0 {
			return
		}
		cmd.Println()
		cmd.Println("Sources:")
		for _, s := range answer.Sources {
			cmd.Printf("  - %s (%.2f)\n", s.Source, s.Score)
		}
	})
}
