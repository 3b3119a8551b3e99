package export

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter renders the report as a human-readable Markdown summary
type MarkdownExporter struct{}

// Export writes the report as Markdown
func (e *MarkdownExporter) Export(report *Report, w io.Writer) error {
	title := report.SessionName
	if title == "" {
		title = report.SessionID
	}
	_, _ = fmt.Fprintf(w, "# Review Report: %s\n\n", title)
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", report.GeneratedAt)

	_, _ = fmt.Fprintf(w, "## Summary\n\n")
	_, _ = fmt.Fprintf(w, "| Metric | Value |\n|---|---|\n")
	_, _ = fmt.Fprintf(w, "| Total Traces | %d |\n", report.Summary.TotalTraces)
	_, _ = fmt.Fprintf(w, "| Reviewed | %d |\n", report.Summary.ReviewedCount)
	_, _ = fmt.Fprintf(w, "| Passed | %d |\n", report.Summary.PassedCount)
	_, _ = fmt.Fprintf(w, "| Failed | %d |\n", report.Summary.FailedCount)
	_, _ = fmt.Fprintf(w, "| Deferred | %d |\n", report.Summary.DeferredCount)
	_, _ = fmt.Fprintf(w, "| Pass Rate | %.1f%% |\n\n", report.Summary.PassRate*100)

	_, _ = fmt.Fprintf(w, "## Failure Mode Distribution\n\n")
	if len(report.Tags) == 0 {
		_, _ = fmt.Fprintf(w, "No failure modes recorded.\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "| Tag | Count |\n|---|---|\n")
		for _, tag := range report.Tags {
			_, _ = fmt.Fprintf(w, "| %s | %d |\n", tag.Name, tag.Count)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	_, _ = fmt.Fprintf(w, "## Traces\n\n")
	for i, row := range report.Rows {
		_, _ = fmt.Fprintf(w, "### %s\n\n", row.TraceID)
		_, _ = fmt.Fprintf(w, "**Input:** %s\n\n", row.UserInput)
		_, _ = fmt.Fprintf(w, "**Output:** %s\n\n", row.AgentOutput)
		if row.Verdict != "" {
			_, _ = fmt.Fprintf(w, "**Verdict:** %s\n\n", row.Verdict)
		}
		if row.OpenCode != "" {
			_, _ = fmt.Fprintf(w, "**Open Code:** %s\n\n", row.OpenCode)
		}
		if len(row.TagNames) > 0 {
			_, _ = fmt.Fprintf(w, "**Tags:** %s\n\n", strings.Join(row.TagNames, ", "))
		}
		if i < len(report.Rows)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
