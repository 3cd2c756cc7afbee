package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/chatclaim/internal/application/dto"
)

// chatCmd represents the root command for chat backend operations.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the chat backend",
}

// chatSendCmd sends one message with a claim token attached when one can be issued.
var chatSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a chat message",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, _ := cmd.Flags().GetString("student")
		message, _ := cmd.Flags().GetString("message")
		if student == "" || message == "" {
			return fmt.Errorf("--student and --message are required")
		}

		_, pipeline, err := loadPipeline(cmd)
		if err != nil {
			return err
		}

		resp, err := pipeline.Chat.SendMessage(cmd.Context(), &dto.ChatRequest{Message: message, StudentID: student})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

// chatHistoryCmd prints the chat history of a student.
var chatHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the chat history of a student",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, _ := cmd.Flags().GetString("student")
		if student == "" {
			return fmt.Errorf("--student is required")
		}

		_, pipeline, err := loadPipeline(cmd)
		if err != nil {
			return err
		}

		history, err := pipeline.Chat.GetHistory(cmd.Context(), student)
		if err != nil {
			return err
		}
		if history == nil {
			history = []dto.ChatMessage{}
		}
		return printJSON(cmd.OutOrStdout(), history)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatSendCmd, chatHistoryCmd)

	chatSendCmd.Flags().String("student", "", "student identifier")
	chatSendCmd.Flags().String("message", "", "message text")
	chatHistoryCmd.Flags().String("student", "", "student identifier")
}
