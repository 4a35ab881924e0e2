package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driving/tui"
)

var (
	chatTenant       string
	chatSystemPrompt string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a knowledge base",
	Long: `Opens an interactive multi-turn conversation. Each question is answered
from the assistant's documents, with earlier turns sent as history.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	tenantFlag(chatCmd, &chatTenant)
	chatCmd.Flags().StringVar(&chatSystemPrompt, "system-prompt", "", "replace the configured system prompt")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	app, err := tui.NewApp(&tui.Ports{Answer: answerService}, tui.Options{
		TenantID:     chatTenant,
		SystemPrompt: chatSystemPrompt,
	})
	if err != nil {
		return err
	}
	return app.WithContext(cmd.Context()).Run()
}
