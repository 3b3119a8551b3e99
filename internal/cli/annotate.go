package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/wire"
)

// AnnotateCmd returns the annotate command
func AnnotateCmd() *cobra.Command {
	var (
		verdict  string
		openCode string
		tagIDs   []string
		reviewer string
	)

	cmd := &cobra.Command{
		Use:   "annotate [trace-id]",
		Short: "Record a review verdict on a trace",
		Long: `Record a review verdict on a trace. The verdict (pass, fail or defer)
is required; the open code is a freeform failure observation and the tag ids
replace the trace's existing tag references wholesale.

Examples:
  sift annotate trace_abc --verdict pass
  sift annotate trace_abc --verdict fail --code "made up a store" --tag tag_123`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if reviewer == "" {
				reviewer = wire.Config().ResolveReviewerID()
			}

			trace, err := wire.AnnotationService().Annotate(ctx, primary.AnnotateRequest{
				TraceID:    args[0],
				Verdict:    verdict,
				OpenCode:   openCode,
				TagIDs:     tagIDs,
				ReviewerID: reviewer,
			})
			if err != nil {
				return fmt.Errorf("failed to annotate trace: %w", err)
			}

			fmt.Printf("✓ Annotated %s: %s\n", trace.ID, formatVerdict(trace.Verdict))
			if trace.OpenCode != "" {
				fmt.Printf("  Open code: %s\n", trace.OpenCode)
			}
			if len(trace.TagRefs) > 0 {
				fmt.Printf("  Tags: %v\n", trace.TagRefs)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&verdict, "verdict", "v", "", "Review verdict: pass, fail or defer (required)")
	cmd.Flags().StringVarP(&openCode, "code", "c", "", "Freeform open code describing the failure")
	cmd.Flags().StringSliceVarP(&tagIDs, "tag", "t", nil, "Axial tag id (repeatable)")
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "Reviewer id (defaults to config / $USER)")
	_ = cmd.MarkFlagRequired("verdict")

	return cmd
}

// ClearCmd returns the clear command
func ClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [trace-id]",
		Short: "Clear a trace's review fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			trace, err := wire.AnnotationService().Clear(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to clear annotation: %w", err)
			}

			fmt.Printf("✓ Cleared review fields on %s\n", trace.ID)
			return nil
		},
	}
}

// formatVerdict renders a verdict with the usual traffic-light colors.
func formatVerdict(verdict string) string {
	switch verdict {
	case "pass":
		return color.New(color.FgHiGreen).Sprint("pass")
	case "fail":
		return color.New(color.FgRed).Sprint("fail")
	case "defer":
		return color.New(color.FgYellow).Sprint("defer")
	default:
		return verdict
	}
}
