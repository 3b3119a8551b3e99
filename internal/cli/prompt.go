package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/wire"
)

// PromptCmd returns the prompt command
func PromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Prompt improvement from tagged failures",
	}
	cmd.AddCommand(promptImproveCmd())
	return cmd
}

func promptImproveCmd() *cobra.Command {
	var (
		promptFile string
		tagIDs     []string
		extraCtx   string
		count      int
	)

	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Suggest improved system prompts targeting tagged failures",
		Long: `Ask the configured OpenAI model for rewritten system prompts that
address the failure modes captured by the given tags. The current prompt is
read from --prompt-file; each tag contributes its description and example
open codes as grounding.

Requires openai_api_key (or OPENAI_API_KEY) in the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			data, err := os.ReadFile(promptFile)
			if err != nil {
				return fmt.Errorf("failed to read prompt file: %w", err)
			}

			resp, err := wire.PromptService().SuggestImprovements(ctx, primary.SuggestPromptRequest{
				CurrentPrompt:     strings.TrimSpace(string(data)),
				TargetTagIDs:      tagIDs,
				AdditionalContext: extraCtx,
				NumSuggestions:    count,
			})
			if err != nil {
				return fmt.Errorf("suggestion failed: %w", err)
			}

			heading := color.New(color.FgHiCyan, color.Bold)
			for _, s := range resp.Suggestions {
				heading.Printf("=== Version %d ===\n", s.Version)
				fmt.Println(s.ImprovedPrompt)
				fmt.Println()
				if len(s.ChangesMade) > 0 {
					fmt.Println("Changes:")
					for _, change := range s.ChangesMade {
						fmt.Printf("  - %s\n", change)
					}
				}
				if len(s.TargetedFailures) > 0 {
					fmt.Printf("Targets: %s\n", strings.Join(s.TargetedFailures, ", "))
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&promptFile, "prompt-file", "p", "", "File holding the current system prompt (required)")
	cmd.Flags().StringSliceVarP(&tagIDs, "tag", "t", nil, "Target failure tag id (repeatable)")
	cmd.Flags().StringVar(&extraCtx, "context", "", "Additional context for the model")
	cmd.Flags().IntVarP(&count, "count", "n", 3, "Number of suggestions to generate")
	_ = cmd.MarkFlagRequired("prompt-file")

	return cmd
}
