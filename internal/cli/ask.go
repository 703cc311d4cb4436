package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askQuestion string

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a single question from the terminal",
	Long: `Answer one question against the indexed letters and print the reply.

Examples:
  letterchat ask -q "What does Buffett think about index funds?"`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (required)")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	chat, vs, err := newChat(GetConfig(), GetRootDir())
	if err != nil {
		return err
	}
	defer vs.Close()

	answer, err := chat.Answer(cmd.Context(), askQuestion)
	// The answer is always printable; the error is only informational
	// for the exit status.
	fmt.Println(answer)
	if err != nil {
		return fmt.Errorf("answer degraded: %w", err)
	}
	return nil
}
