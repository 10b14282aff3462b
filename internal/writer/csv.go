package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// Row is one parsed email as exported by the CLI.
type Row struct {
	File     string
	Index    int
	Result   models.ParseResult
	Accepted bool
}

var csvHeader = []string{
	"file", "index", "success", "accepted", "template", "occurredAt", "amount", "currency",
	"merchant", "operationId", "cardLast4", "confidence", "notes",
}

// CSVWriter writes parse results to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes rows to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, rows)
}

// Write writes rows in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, rows []Row) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		if err := writer.Write([]string{"# Engine", models.EngineVersion}); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		if err := writer.Write(record(row)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func record(row Row) []string {
	r := row.Result
	rec := []string{
		row.File,
		strconv.Itoa(row.Index),
		strconv.FormatBool(r.Success),
		strconv.FormatBool(row.Accepted),
		string(r.Template),
		"", "", "", "", "", "",
		formatConfidence(r.Confidence),
		strings.Join(r.Notes, "; "),
	}
	if tx := r.Transaction; tx != nil {
		rec[5] = tx.OccurredAt
		rec[6] = tx.Amount.Value
		rec[7] = string(tx.Amount.Currency)
		rec[8] = tx.Merchant
		rec[9] = tx.OperationID
		rec[10] = tx.CardLast4
	}
	return rec
}

func formatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', 4, 64)
}
