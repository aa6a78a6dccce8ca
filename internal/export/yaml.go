package export

import (
	"io"

	"github.com/qorvid/cursor-atlas/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter renders conversations as YAML documents.
type YAMLExporter struct{}

// Export writes the conversation as YAML.
func (e *YAMLExporter) Export(conv *internal.Conversation, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(conv)
}

// Extension returns the file extension for this format.
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
