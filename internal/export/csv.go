package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// CSVExporter exports a report as one CSV row per trace
type CSVExporter struct{}

// Export writes the report's trace rows as CSV
func (e *CSVExporter) Export(report *Report, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{
		"Trace ID",
		"User Input",
		"Agent Output",
		"System Prompt",
		"Pass/Fail",
		"Open Code",
		"Axial Tags",
		"Reviewer ID",
		"Reviewed At",
		"Metadata",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range report.Rows {
		metadata, err := json.Marshal(row.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for trace %s: %w", row.TraceID, err)
		}

		record := []string{
			row.TraceID,
			row.UserInput,
			row.AgentOutput,
			row.SystemPrompt,
			row.Verdict,
			row.OpenCode,
			strings.Join(row.TagNames, ", "),
			row.ReviewerID,
			row.ReviewedAt,
			string(metadata),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write trace %s: %w", row.TraceID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Extension returns the file extension for this format
func (e *CSVExporter) Extension() string {
	return "csv"
}
