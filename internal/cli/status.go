package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store and review totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			traces, err := wire.TraceService().ListTraces(ctx, primary.TraceFilter{})
			if err != nil {
				return fmt.Errorf("failed to list traces: %w", err)
			}
			tags, err := wire.TagService().ListTags(ctx)
			if err != nil {
				return fmt.Errorf("failed to list tags: %w", err)
			}
			sessions, err := wire.SessionService().ListSessions(ctx)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			var reviewed, passed, failed, deferred int
			for _, trace := range traces {
				if !trace.Reviewed {
					continue
				}
				reviewed++
				switch trace.Verdict {
				case "pass":
					passed++
				case "fail":
					failed++
				case "defer":
					deferred++
				}
			}

			fmt.Println("sift status")
			fmt.Println()
			fmt.Printf("Traces:   %d total, %d reviewed\n", len(traces), reviewed)
			fmt.Printf("          %s %d  %s %d  %s %d\n",
				formatVerdict("pass"), passed,
				formatVerdict("fail"), failed,
				formatVerdict("defer"), deferred)
			fmt.Printf("Tags:     %d\n", len(tags))
			fmt.Printf("Sessions: %d\n", len(sessions))

			if cfg := wire.Config(); cfg.ExperimentID != "" {
				fmt.Println()
				fmt.Printf("Braintrust experiment: %s\n", cfg.ExperimentID)
			}
			return nil
		},
	}
}
