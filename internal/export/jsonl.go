package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter writes one message per line. Each line carries the session
// uuid so concatenated exports stay attributable.
type JSONLExporter struct{}

type jsonlLine struct {
	SessionUUID string `json:"session_uuid"`
	Message
}

func (e *JSONLExporter) Export(session *Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		if err := enc.Encode(jsonlLine{SessionUUID: session.UUID, Message: msg}); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
