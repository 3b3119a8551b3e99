package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/sift/internal/cli"
	"github.com/example/sift/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "sift",
		Short:   "sift - review and classify AI agent traces",
		Version: version.String(),
		Long: `sift is a CLI tool for reviewing AI agent traces: mark them pass/fail,
attach open codes, classify failures into a shared axial tag taxonomy, and
sync verdicts back to Braintrust.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.TraceCmd())
	rootCmd.AddCommand(cli.TagCmd())
	rootCmd.AddCommand(cli.AnnotateCmd())
	rootCmd.AddCommand(cli.ClearCmd())
	rootCmd.AddCommand(cli.SessionCmd())
	rootCmd.AddCommand(cli.SyncCmd())
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.PromptCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
