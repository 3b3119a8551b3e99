package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/wire"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync traces with Braintrust",
	Long: `Pull experiment traces from Braintrust into the local store and push
review verdicts back as feedback. Requires braintrust_api_key (or
BRAINTRUST_API_KEY) and experiment_id in the config.`,
}

var syncImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Fetch one page of traces from the configured experiment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cursor, _ := cmd.Flags().GetString("cursor")
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := wire.SyncService().ImportFromSource(ctx, primary.SyncImportRequest{
			Cursor: cursor,
			Limit:  limit,
		})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("✓ Imported %d trace(s)\n", resp.ImportedCount)
		for _, failure := range resp.Failures {
			fmt.Printf("  ⚠ skipped %s: %s\n", failure.TraceID, failure.Reason)
		}
		if resp.NextCursor != "" {
			fmt.Printf("\nNext page: sift sync import --cursor %s\n", resp.NextCursor)
		}
		return nil
	},
}

var syncExportCmd = &cobra.Command{
	Use:   "export [trace-id...]",
	Short: "Push review verdicts back to Braintrust as feedback",
	Long: `Push the review outcome of the given traces back to Braintrust. With no
arguments, every reviewed trace in the store is submitted. Unreviewed or
missing traces are skipped with a reason; a run with nothing to submit is
not an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		traceIDs := args
		if len(traceIDs) == 0 {
			reviewed := true
			traces, err := wire.TraceService().ListTraces(ctx, primary.TraceFilter{Reviewed: &reviewed})
			if err != nil {
				return fmt.Errorf("failed to list reviewed traces: %w", err)
			}
			for _, trace := range traces {
				traceIDs = append(traceIDs, trace.ID)
			}
		}

		resp, err := wire.SyncService().SubmitFeedback(ctx, traceIDs)
		if err != nil {
			return fmt.Errorf("feedback submission failed: %w", err)
		}

		fmt.Printf("✓ Submitted feedback for %d trace(s)\n", resp.ExportedCount)
		for _, failure := range resp.Failures {
			fmt.Printf("  ⚠ skipped %s: %s\n", failure.TraceID, failure.Reason)
		}
		return nil
	},
}

func init() {
	syncImportCmd.Flags().String("cursor", "", "Pagination cursor from a previous page")
	syncImportCmd.Flags().Int("limit", 50, "Maximum records to fetch")

	syncCmd.AddCommand(syncImportCmd)
	syncCmd.AddCommand(syncExportCmd)
}

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	return syncCmd
}
