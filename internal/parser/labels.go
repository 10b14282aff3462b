package parser

import (
	"regexp"
	"strings"
)

// accentClasses widens plain vowels (and n) so a label written without
// accents also matches its accented spelling.
var accentClasses = map[rune]string{
	'a': "[aáà]", 'e': "[eéè]", 'i': "[iíì]", 'o': "[oóò]", 'u': "[uúüù]", 'n': "[nñ]",
}

// labelExpr turns a plain lower-case label into an accent-insensitive
// expression. Spaces match any run of whitespace.
func labelExpr(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if class, ok := accentClasses[r]; ok {
			b.WriteString(class)
			continue
		}
		if r == ' ' {
			b.WriteString(`\s+`)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}

func labelAlternation(labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = labelExpr(l)
	}
	return "(?:" + strings.Join(parts, "|") + ")"
}

// labeled compiles "<any label> [:] <value>" as a case- and accent-insensitive
// pattern. value must contain exactly one capture group. The separator never
// crosses a line break; values that may sit on the next line say so.
func labeled(labels []string, value string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + labelAlternation(labels) + `[ \t]*[:=]?[ \t]*` + value)
}

const (
	// moneyValue captures a currency marker plus the numeric text.
	moneyValue = `\s*((?:S/\.?|US\$|USD|PEN|\$)?\s*-?\d[\d.,]*(?:\s*(?:soles|d[oó]lares))?)`
	// textValue captures the rest of the line.
	textValue = `([^\n]+)`
	// digitsValue captures an identifier made of digits.
	digitsValue = `[#:\s]*(\d{4,})`
	// accountValue captures masked or plain account numbers.
	accountValue = `\s*([*xX•\d][*xX•\d\- ]{2,}\d)`
)

// fieldLabels is the vocabulary of every label the templates know. It feeds
// the boundary trimmer, so it must contain labels only, never values.
var fieldLabels = []string{
	"numero de operacion", "nro. de operacion", "nro de operacion", "n° de operacion",
	"codigo de operacion", "operacion n°",
	"fecha y hora", "fecha de la operacion", "fecha de operacion", "fecha:", "hora:",
	"monto de consumo", "monto del consumo", "total del consumo", "monto de la compra",
	"monto transferido", "monto enviado", "monto del pago", "monto pagado", "monto total",
	"monto retirado", "monto del retiro", "monto recibido", "monto abonado", "monto depositado",
	"monto de la comision", "monto:", "importe:",
	"tarjeta de credito", "tarjeta de debito", "numero de tarjeta", "tarjeta:",
	"comercio:", "empresa:", "establecimiento:",
	"cuenta de origen", "cuenta origen", "cuenta de cargo", "cuenta cargo",
	"cuenta de destino", "cuenta destino", "cuenta de abono", "cuenta abono",
	"banco de destino", "banco destino",
	"beneficiario", "destinatario", "enviado a:", "enviado por", "ordenante",
	"titular del servicio", "nombre del servicio", "servicio:",
	"codigo de usuario", "codigo de cliente", "codigo de suministro", "numero de suministro",
	"canal:", "tipo de operacion", "tipo de envio", "tipo de pago",
	"lugar:", "ubicacion:", "cajero:", "cuenta:", "saldo disponible", "concepto:", "motivo:",
	"¿no reconoces", "no reconoces esta operacion",
}

// labelBoundary is built once: the earliest label occurrence inside a
// captured value marks where the next field starts.
var labelBoundary = regexp.MustCompile(`(?i)` + labelAlternation(fieldLabels))

// trimAtLabel truncates value at the first known label that does not start
// the value.
func trimAtLabel(value string) string {
	for _, loc := range labelBoundary.FindAllStringIndex(value, -1) {
		if loc[0] > 0 {
			return strings.TrimSpace(value[:loc[0]])
		}
	}
	return strings.TrimSpace(value)
}

var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)¿?\s*no\s+reconoces\s+esta\s+operaci[oó]n.*$`),
	regexp.MustCompile(`(?i)comun[ií]cate.*$`),
	regexp.MustCompile(`\(\d{2,3}\)\s*\d{3}[-\s]?\d{4}`),
	regexp.MustCompile(`(?i)\banexo\s*\d+`),
}

var trailingPunct = regexp.MustCompile(`[\s,;:.\-|¿?]+$`)

// sanitizeText strips trailing boilerplate from a free-text value such as a
// merchant or beneficiary name.
func sanitizeText(value string) string {
	for _, re := range boilerplatePatterns {
		value = re.ReplaceAllString(value, "")
	}
	value = strings.Join(strings.Fields(value), " ")
	return trailingPunct.ReplaceAllString(value, "")
}

// cleanField applies label-boundary trimming followed by sanitization.
func cleanField(value string) string {
	return sanitizeText(trimAtLabel(value))
}
