package export

import (
	"encoding/json"
	"io"

	"github.com/qorvid/cursor-atlas/internal"
)

// JSONExporter renders conversations as pretty-printed JSON.
type JSONExporter struct{}

// Export writes the conversation as a single JSON document.
func (e *JSONExporter) Export(conv *internal.Conversation, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(conv)
}

// Extension returns the file extension for this format.
func (e *JSONExporter) Extension() string {
	return "json"
}
