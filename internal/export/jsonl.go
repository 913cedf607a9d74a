package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/eebc-chat/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		obj := map[string]interface{}{
			"id":      msg.ID,
			"role":    msg.Role,
			"content": msg.Content,
		}
		if !msg.CreatedAt.IsZero() {
			obj["timestamp"] = msg.CreatedAt.Format(time.RFC3339)
		}
		if msg.Meta != nil {
			obj["applies"] = msg.Meta.Applies
			obj["reason"] = msg.Meta.Reason
		}
		if len(msg.Sources) > 0 {
			obj["sources"] = msg.Sources
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
