package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports the full report as indented JSON
type JSONExporter struct{}

// Export writes the report as JSON
func (e *JSONExporter) Export(report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
