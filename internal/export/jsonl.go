package export

import (
	"encoding/json"
	"io"

	"github.com/qorvid/cursor-atlas/internal"
)

// JSONLExporter renders conversations as one JSON object per message,
// suitable for streaming consumers.
type JSONLExporter struct{}

// jsonlLine flattens a message with its conversation identity so each line
// stands alone.
type jsonlLine struct {
	ConversationID string `json:"conversationId"`
	Title          string `json:"title,omitempty"`
	internal.Message
}

// Export writes one line per message.
func (e *JSONLExporter) Export(conv *internal.Conversation, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, msg := range conv.Messages {
		line := jsonlLine{
			ConversationID: conv.ID,
			Title:          conv.Title,
			Message:        msg,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for this format.
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
