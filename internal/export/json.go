package export

import (
	"encoding/json"
	"io"
)

// JSONExporter writes the whole session as one indented document.
type JSONExporter struct{}

func (e *JSONExporter) Export(session *Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(session)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
