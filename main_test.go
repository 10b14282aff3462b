package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/bank-notification-parser/internal/parser"
)

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emails.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestLoadEmails(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"single object", `{"subject":"a","text":"b"}`, 1, false},
		{"array", `[{"subject":"a","text":"b"},{"subject":"c","html":"<p>d</p>"}]`, 2, false},
		{"empty file", "  \n", 0, true},
		{"broken json", `{"subject":`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emails, err := loadEmails(writeInput(t, tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(emails) != tt.want {
				t.Errorf("got %d emails, want %d", len(emails), tt.want)
			}
		})
	}
}

func TestProcessFile(t *testing.T) {
	path := writeInput(t, `[
  {"subject":"BCP: Realizaste un consumo","text":"Realizaste un consumo con tu Tarjeta de Crédito BCP\nMonto de consumo: S/ 23.60\nFecha y hora: 15/01/2024 10:32 pm\nEmpresa: TAMBO LARCO\nNúmero de tarjeta: **** 1234\nNúmero de operación: 348298"},
  {"subject":"Novedades","text":"Conoce nuestras ofertas"}
]`)

	rows, err := processFile(parser.NewEngine(), 0.7, path, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !rows[0].Result.Success || !rows[0].Accepted {
		t.Errorf("first row should parse and pass the gate: %+v", rows[0])
	}
	if rows[1].Result.Success || rows[1].Accepted || rows[1].Index != 1 {
		t.Errorf("second row should fail: %+v", rows[1])
	}
}

func TestWriteRows_UnknownFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	if err := writeRows(nil, "xml", out, true); err == nil {
		t.Error("expected error for unknown format")
	}
}
