package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/echelon/internal/llm"
	"github.com/spf13/cobra"
)

// llmCmd groups hosted-model commands
var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Hosted model utilities",
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured hosted model provider is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		hosted, err := llm.NewClassifier(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return err
		}
		if hosted == nil {
			return fmt.Errorf("no provider configured (set llm.provider or --provider)")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if !hosted.IsAvailable(ctx) {
			return fmt.Errorf("%s is not reachable with the current configuration", hosted.ProviderName())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is reachable\n", hosted.ProviderName())
		return nil
	},
}

var llmPromptCmd = &cobra.Command{
	Use:   "prompt [statement...]",
	Short: "Print the instruction sent to the hosted model for a statement",
	RunE: func(cmd *cobra.Command, args []string) error {
		statement, err := readStatement(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), llm.BuildPrompt(statement))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(llmCmd)
	llmCmd.AddCommand(llmCheckCmd)
	llmCmd.AddCommand(llmPromptCmd)
}
