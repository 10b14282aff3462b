package extractor

import (
	"strings"
	"testing"
)

func TestNormalizeLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"crlf and blank lines", "Hola\r\n\r\n  Monto: S/ 23.60  \r\n", "Hola\nMonto: S/ 23.60"},
		{"tabs and nbsp", "Monto\t\tde consumo", "Monto de consumo"},
		{"lone cr", "a\rb", "a\nb"},
		{"only whitespace", " \n\t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLines(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeLines(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Número de operación", "Numero de operacion"},
		{"Comunícate", "Comunicate"},
		{"ÁÉÍÓÚ ñ ü", "AEIOU n u"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Fold(tt.input); got != tt.expected {
				t.Errorf("Fold(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	if got := FoldLower("Operación"); got != "operacion" {
		t.Errorf("FoldLower: got %q, want %q", got, "operacion")
	}
}

func TestLooksLikeHTML(t *testing.T) {
	if !LooksLikeHTML("<p>hola</p>") {
		t.Error("expected markup to be detected")
	}
	if !LooksLikeHTML("texto<br/>mas") {
		t.Error("expected self-closing tag to be detected")
	}
	if LooksLikeHTML("Monto < 5 y > 3") {
		t.Error("comparison signs are not markup")
	}
}

func TestExtractText(t *testing.T) {
	body := `<html><head><title>BCP</title><style>td{color:red}</style></head>
<body>
<script>var x = "Monto: S/ 999.99";</script>
<p>Hola <b>Juan</b>,</p>
<table>
  <tr><td>Monto de consumo</td><td><b>S/ 23.60</b></td></tr>
  <tr><td>Comercio</td><td>TAMBO&nbsp;LARCO</td></tr>
</table>
<!-- tracking -->
<div>Gracias</div>
</body></html>`

	got := ExtractText(body)
	want := "Hola Juan,\nMonto de consumo S/ 23.60\nComercio TAMBO LARCO\nGracias"
	if got != want {
		t.Errorf("ExtractText:\ngot  %q\nwant %q", got, want)
	}
	if strings.Contains(got, "999.99") {
		t.Error("script content leaked into text")
	}
}

func TestExtractText_PlainText(t *testing.T) {
	got := ExtractText("Monto: S/ 10.00\r\n\r\nFecha: 15/01/2024")
	if got != "Monto: S/ 10.00\nFecha: 15/01/2024" {
		t.Errorf("got %q", got)
	}
	if ExtractText("   ") != "" {
		t.Error("expected empty output for blank input")
	}
}
