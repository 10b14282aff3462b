package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// jsonLine is the JSON-lines shape of a Row.
type jsonLine struct {
	File     string             `json:"file"`
	Index    int                `json:"index"`
	Accepted bool               `json:"accepted"`
	Result   models.ParseResult `json:"result"`
}

// JSONWriter writes one JSON object per row.
type JSONWriter struct{}

// Write encodes rows as JSON lines.
func (w *JSONWriter) Write(out io.Writer, rows []Row) error {
	enc := json.NewEncoder(out)
	for _, row := range rows {
		line := jsonLine{File: row.File, Index: row.Index, Accepted: row.Accepted, Result: row.Result}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to write JSON row: %w", err)
		}
	}
	return nil
}
