package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/wire"
)

// traceUpload is the JSON shape accepted by `sift trace import` and
// `sift session create --file`. Review fields are accepted so annotated
// exports can be re-imported.
type traceUpload struct {
	ID           string            `json:"id"`
	UserInput    string            `json:"user_input"`
	AgentOutput  string            `json:"agent_output"`
	SystemPrompt string            `json:"system_prompt,omitempty"`
	Steps        []stepUpload      `json:"intermediate_steps,omitempty"`
	Metadata     map[string]any    `json:"metadata,omitempty"`
	Reviewed     bool              `json:"reviewed,omitempty"`
	Verdict      string            `json:"pass_fail,omitempty"`
	OpenCode     string            `json:"open_code,omitempty"`
	TagRefs      []string          `json:"axial_tags,omitempty"`
	ReviewerID   string            `json:"reviewer_id,omitempty"`
	ReviewedAt   string            `json:"reviewed_at,omitempty"`
}

type stepUpload struct {
	StepType  string         `json:"step_type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// readTraceFile decodes a JSON file holding either a bare trace array or an
// object with a "traces" key.
func readTraceFile(path string) ([]*primary.Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var uploads []traceUpload
	if err := json.Unmarshal(data, &uploads); err != nil {
		var wrapper struct {
			Traces []traceUpload `json:"traces"`
		}
		if err2 := json.Unmarshal(data, &wrapper); err2 != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		uploads = wrapper.Traces
	}

	traces := make([]*primary.Trace, len(uploads))
	for i, u := range uploads {
		traces[i] = u.toTrace()
	}
	return traces, nil
}

func (u traceUpload) toTrace() *primary.Trace {
	steps := make([]primary.TraceStep, len(u.Steps))
	for i, s := range u.Steps {
		steps[i] = primary.TraceStep{
			Type:      s.StepType,
			Content:   s.Content,
			Metadata:  s.Metadata,
			Timestamp: s.Timestamp,
		}
	}
	return &primary.Trace{
		ID:           u.ID,
		UserInput:    u.UserInput,
		AgentOutput:  u.AgentOutput,
		SystemPrompt: u.SystemPrompt,
		Steps:        steps,
		Metadata:     u.Metadata,
		Reviewed:     u.Reviewed,
		Verdict:      u.Verdict,
		OpenCode:     u.OpenCode,
		TagRefs:      u.TagRefs,
		ReviewerID:   u.ReviewerID,
		ReviewedAt:   u.ReviewedAt,
	}
}

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Manage traces (recorded agent interactions)",
	Long:  "Import, list, show and delete traces in the sift store",
}

var traceImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import traces from a JSON file",
	Long: `Import traces from a JSON file. The file holds an array of trace
objects (or an object with a "traces" key). The import is all-or-nothing:
the first malformed record fails the whole batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		traces, err := readTraceFile(args[0])
		if err != nil {
			return err
		}

		resp, err := wire.TraceService().ImportTraces(ctx, primary.ImportTracesRequest{Traces: traces})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("✓ Imported %d trace(s)\n", resp.ImportedCount)
		return nil
	},
}

var traceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List traces",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var filter primary.TraceFilter
		if cmd.Flags().Changed("reviewed") {
			reviewed, _ := cmd.Flags().GetBool("reviewed")
			filter.Reviewed = &reviewed
		}
		if cmd.Flags().Changed("verdict") {
			verdict, _ := cmd.Flags().GetString("verdict")
			filter.Verdict = &verdict
		}

		traces, err := wire.TraceService().ListTraces(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list traces: %w", err)
		}

		if len(traces) == 0 {
			fmt.Println("No traces found")
			return nil
		}

		fmt.Printf("Found %d trace(s):\n\n", len(traces))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVERDICT\tTAGS\tINPUT")
		for _, trace := range traces {
			verdict := trace.Verdict
			if verdict == "" {
				verdict = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", trace.ID, verdict, len(trace.TagRefs), truncate(trace.UserInput, 60))
		}
		return w.Flush()
	},
}

var traceShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show full trace details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		trace, err := wire.TraceService().GetTrace(ctx, args[0])
		if err != nil {
			return fmt.Errorf("trace not found: %w", err)
		}

		fmt.Printf("Trace: %s\n", trace.ID)
		if trace.SystemPrompt != "" {
			fmt.Printf("System prompt: %s\n", trace.SystemPrompt)
		}
		fmt.Printf("User input: %s\n", trace.UserInput)
		fmt.Printf("Agent output: %s\n", trace.AgentOutput)

		if len(trace.Steps) > 0 {
			fmt.Printf("\nSteps (%d):\n", len(trace.Steps))
			for i, step := range trace.Steps {
				fmt.Printf("  %d. [%s] %s\n", i+1, step.Type, truncate(step.Content, 80))
			}
		}

		fmt.Println()
		if trace.Reviewed {
			fmt.Printf("Verdict: %s\n", trace.Verdict)
			if trace.OpenCode != "" {
				fmt.Printf("Open code: %s\n", trace.OpenCode)
			}
			if len(trace.TagRefs) > 0 {
				fmt.Printf("Tags: %v\n", trace.TagRefs)
			}
			if trace.ReviewerID != "" {
				fmt.Printf("Reviewer: %s\n", trace.ReviewerID)
			}
			fmt.Printf("Reviewed at: %s\n", trace.ReviewedAt)
		} else {
			fmt.Println("Not yet reviewed")
		}
		return nil
	},
}

var traceDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := wire.TraceService().DeleteTrace(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete trace: %w", err)
		}

		fmt.Printf("✓ Deleted trace %s\n", args[0])
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	traceListCmd.Flags().Bool("reviewed", false, "Filter by review state (--reviewed=false for unreviewed)")
	traceListCmd.Flags().String("verdict", "", "Filter by verdict (pass, fail, defer)")

	traceCmd.AddCommand(traceImportCmd)
	traceCmd.AddCommand(traceListCmd)
	traceCmd.AddCommand(traceShowCmd)
	traceCmd.AddCommand(traceDeleteCmd)
}

// TraceCmd returns the trace command
func TraceCmd() *cobra.Command {
	return traceCmd
}
