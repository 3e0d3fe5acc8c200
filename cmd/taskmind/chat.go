package main

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/taskmind/taskmind/internal/database"
)

var replyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send one message to the assistant",
	Long: `Send a single message to the TaskMind assistant and print its reply.
Conversation history is stored per user, so follow-up messages keep context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		conversations := database.NewConversationDAO(a.db)

		history, err := conversations.Load(ctx, userID, a.cfg.Assistant.HistoryLimit)
		if err != nil {
			return err
		}

		message := strings.TrimSpace(strings.Join(args, " "))
		result := a.orch.Run(ctx, userID, message, history)

		for _, inv := range result.ToolInvocations {
			slog.Debug("tool invoked", "tool", inv.Name, "error", inv.IsError)
		}

		cmd.Println(replyStyle.Render(result.FinalText))

		// Degraded turns carry fallback text, not a real assistant reply;
		// replaying them as history would mislead the model.
		if !result.Degraded {
			if err := conversations.Append(ctx, userID, result.NewMessages); err != nil {
				slog.Warn("failed to save conversation", "error", err)
			}
		}

		return nil
	},
}
