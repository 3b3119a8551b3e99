package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/wire"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage review sessions",
	Long:  "Create, list, show and delete review sessions",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a review session from a trace file",
	Long: `Create a review session from a JSON trace file. The traces are written
through to the trace store and the current tag registry is snapshotted into
the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		name, _ := cmd.Flags().GetString("name")
		file, _ := cmd.Flags().GetString("file")
		mode, _ := cmd.Flags().GetString("mode")
		randomize, _ := cmd.Flags().GetBool("randomize")

		var traces []*primary.Trace
		if file != "" {
			var err error
			traces, err = readTraceFile(file)
			if err != nil {
				return err
			}
		}

		session, err := wire.SessionService().CreateSession(ctx, primary.CreateSessionRequest{
			Name:   name,
			Traces: traces,
			Config: primary.SessionConfig{
				Mode:           mode,
				RandomizeOrder: randomize,
				Source:         "upload",
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		fmt.Printf("✓ Created session %s: %s\n", session.ID, session.Name)
		fmt.Printf("  Traces: %d (%d reviewed)\n", session.TotalTraces, session.ReviewedCount)
		fmt.Printf("  Tag snapshot: %d tag(s)\n", len(session.TagSnapshot))
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		sessions, err := wire.SessionService().ListSessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found")
			return nil
		}

		fmt.Printf("Found %d session(s):\n\n", len(sessions))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTRACES\tREVIEWED\tSOURCE\tCREATED")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", s.ID, s.Name, s.TotalTraces, s.ReviewedCount, s.Source, s.CreatedAt)
		}
		return w.Flush()
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show session details and review progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		session, err := wire.SessionService().GetSession(ctx, args[0])
		if err != nil {
			return fmt.Errorf("session not found: %w", err)
		}

		fmt.Printf("Session: %s (%s)\n", session.Name, session.ID)
		fmt.Printf("Mode: %s  Source: %s\n", session.Mode, session.Source)
		fmt.Printf("Created: %s\n", session.CreatedAt)
		fmt.Println()
		fmt.Printf("Progress: %d/%d reviewed\n", session.ReviewedCount, session.TotalTraces)
		fmt.Printf("  %s %d  %s %d  %s %d\n",
			formatVerdict("pass"), session.PassedCount,
			formatVerdict("fail"), session.FailedCount,
			formatVerdict("defer"), session.DeferredCount)

		if len(session.Traces) > 0 {
			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TRACE\tVERDICT\tOPEN CODE")
			for _, trace := range session.Traces {
				verdict := trace.Verdict
				if verdict == "" {
					verdict = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", trace.ID, verdict, truncate(trace.OpenCode, 50))
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a session (traces stay in the store)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := wire.SessionService().DeleteSession(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		fmt.Printf("✓ Deleted session %s\n", args[0])
		return nil
	},
}

func init() {
	sessionCreateCmd.Flags().StringP("name", "n", "", "Session name (defaults to the creation timestamp)")
	sessionCreateCmd.Flags().StringP("file", "f", "", "JSON trace file to load")
	sessionCreateCmd.Flags().StringP("mode", "m", "combined", "Review mode: open_coding, axial_coding or combined")
	sessionCreateCmd.Flags().Bool("randomize", false, "Randomize trace order during review")

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
}

// SessionCmd returns the session command
func SessionCmd() *cobra.Command {
	return sessionCmd
}
