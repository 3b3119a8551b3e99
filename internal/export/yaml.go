package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter exports the full report as YAML
type YAMLExporter struct{}

// Export writes the report as YAML
func (e *YAMLExporter) Export(report *Report, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(report)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
