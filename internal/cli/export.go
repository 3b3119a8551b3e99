package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/sift/internal/export"
	"github.com/example/sift/internal/wire"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [session-id]",
		Short: "Export a session's review data",
		Long: `Export a session's review data as CSV, JSON, YAML or a markdown report.
Tag references are resolved against the live registry; tags deleted since
review fall back to the session's snapshot.

Examples:
  sift export session_abc --format csv
  sift export session_abc --format md --output report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			session, err := wire.SessionService().GetSession(ctx, args[0])
			if err != nil {
				return fmt.Errorf("session not found: %w", err)
			}

			tags, err := wire.TagService().ListTags(ctx)
			if err != nil {
				return fmt.Errorf("failed to load tags: %w", err)
			}

			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
			}

			report := export.BuildReport(session, tags)

			if output == "" {
				output = fmt.Sprintf("%s_report.%s", session.ID, exporter.Extension())
			}
			if output == "-" {
				return exporter.Export(report, os.Stdout)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()

			if err := exporter.Export(report, f); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			fmt.Printf("✓ Exported %s to %s\n", session.ID, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, json, yaml or md")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file ('-' for stdout, default <session>_report.<ext>)")

	return cmd
}
