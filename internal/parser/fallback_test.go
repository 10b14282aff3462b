package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/insightdelivered/bank-notification-parser/internal/extractor"
	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

const transferTableHTML = `<html><head><style>td{color:red}</style></head><body>
<table>
<tr><td>Fecha y hora</td><td>14/10/2026 10:30 a.m.</td></tr>
<tr><td>Número de operación</td><td>778899</td></tr>
<tr><td>Tipo de operación</td><td>Transferencia a terceros</td></tr>
<tr><td>Beneficiario</td><td>ANA TORRES</td></tr>
<tr><td>Banco destino</td><td>Interbank</td></tr>
<tr><td>Cuenta destino</td><td>200-3001234567</td></tr>
</table>
<p>Enviaste <b>S/ 350.00</b></p>
</body></html>`

func TestHTMLFields(t *testing.T) {
	got := htmlFields(transferTableHTML)
	want := fallbackFields{
		fieldDate:               "14/10/2026 10:30 a.m.",
		fieldOperationNumber:    "778899",
		fieldOperationType:      "Transferencia a terceros",
		fieldBeneficiary:        "ANA TORRES",
		fieldBank:               "Interbank",
		fieldDestinationAccount: "200-3001234567",
		fieldAmount:             "S/ 350.00",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}

func TestClassifyLabel(t *testing.T) {
	tests := []struct {
		label string
		want  fallbackField
	}{
		{"Número de tarjeta", fieldCard},
		{"Tarjeta:", fieldCard},
		{"Número de tarjeta del titular", fieldCard},
		{"Titular de la tarjeta", fieldServiceHolder},
		{"Titular del servicio", fieldServiceHolder},
		{"Código de cliente", fieldCustomerCode},
		{"Fecha y hora", fieldDate},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := classifyLabel(tt.label)
			if !ok || got != tt.want {
				t.Errorf("classifyLabel(%q) = %q, %v; want %q", tt.label, got, ok, tt.want)
			}
		})
	}
}

func TestHTMLFields_CardHolderRow(t *testing.T) {
	got := htmlFields(`<table>
<tr><td>Titular de la tarjeta</td><td>JUAN PEREZ</td></tr>
<tr><td>Número de tarjeta</td><td>**** 4321</td></tr>
</table>`)
	if got[fieldServiceHolder] != "JUAN PEREZ" {
		t.Errorf("holder = %q", got[fieldServiceHolder])
	}
	if lastFourDigits(got[fieldCard]) != "4321" {
		t.Errorf("card = %q", got[fieldCard])
	}
}

func TestHTMLFields_SplitDateAndTime(t *testing.T) {
	got := htmlFields(`<table><tr><td>Fecha:</td><td>03/09/2024</td></tr><tr><td>Hora:</td><td>18:22</td></tr></table>`)
	if got[fieldDate] != "03/09/2024 18:22" {
		t.Errorf("date = %q", got[fieldDate])
	}
}

func TestHTMLFields_PlainText(t *testing.T) {
	if got := htmlFields("Monto: S/ 10.00"); len(got) != 0 {
		t.Errorf("plain text should yield no HTML fields, got %v", got)
	}
}

func TestTextFields(t *testing.T) {
	body := "Estimado cliente:\nSe realizó un pago en PLAZA VEA MIRAFLORES por S/ 87.40\nFecha: 03/09/2024 18:22\nNúmero de operación: 665544"
	got := textFields(body)

	checks := map[fallbackField]string{
		fieldAmount:          "S/ 87.40",
		fieldDate:            "03/09/2024 18:22",
		fieldOperationNumber: "665544",
		fieldOperationType:   "pago",
		fieldMerchant:        "PLAZA VEA MIRAFLORES",
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%s = %q, want %q", k, got[k], want)
		}
	}
}

func TestMergeFields_PrimaryWins(t *testing.T) {
	primary := fallbackFields{fieldAmount: "S/ 10.00", fieldMerchant: ""}
	secondary := fallbackFields{fieldAmount: "S/ 99.00", fieldMerchant: "TAMBO", fieldChannel: "Yape"}

	got := mergeFields(primary, secondary)
	want := fallbackFields{fieldAmount: "S/ 10.00", fieldMerchant: "TAMBO", fieldChannel: "Yape"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInferTemplate(t *testing.T) {
	tests := []struct {
		name     string
		fields   fallbackFields
		body     string
		expected models.Template
	}{
		{"transfer beats service", fallbackFields{fieldOperationType: "Transferencia"}, "pago de servicio", models.TemplateAccountTransfer},
		{"service", fallbackFields{fieldPaymentType: "Pago de recibo"}, "", models.TemplateServicePayment},
		{"purchase", fallbackFields{fieldOperationType: "Compra"}, "", models.TemplateCardPurchase},
		{"pago en merchant", fallbackFields{}, "Pago en PLAZA VEA", models.TemplateCardPurchase},
		{"withdrawal", fallbackFields{fieldChannel: "Cajero automático"}, "", models.TemplateATMWithdrawal},
		{"incoming", fallbackFields{}, "Te depositaron en tu cuenta", models.TemplateIncomingCredit},
		{"fee", fallbackFields{}, "Comisión por mantenimiento", models.TemplateFeeCommission},
		{"default", fallbackFields{}, "Aviso", models.TemplateAccountTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferTemplate(tt.fields, tt.body); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFallbackConfidence(t *testing.T) {
	tests := []struct {
		name      string
		fields    fallbackFields
		dateFound bool
		expected  float64
	}{
		{"baseline clamps up", fallbackFields{}, false, 0.7},
		{"date only", fallbackFields{}, true, 0.7},
		{"date and number", fallbackFields{fieldOperationNumber: "1"}, true, 0.8},
		{"everything", fallbackFields{fieldOperationNumber: "1", fieldMerchant: "X"}, true, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fallbackConfidence(tt.fields, tt.dateFound); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFallbackExtractor_HTML(t *testing.T) {
	body := extractor.ExtractText(transferTableHTML)
	got, err := (&FallbackExtractor{}).Extract(transferTableHTML, body, ExtractOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.NormalizedTransaction{
		Source:      models.SourceBCP,
		Template:    models.TemplateAccountTransfer,
		OccurredAt:  "2026-10-14T10:30:00-05:00",
		Amount:      models.Money{Value: "350.00", Currency: models.CurrencyPEN},
		Merchant:    "ANA TORRES",
		AccountRef:  "200-3001234567",
		OperationID: "778899",
		Notes:       "Transferencia a terceros | Banco destino: Interbank",
		Confidence:  0.9,
	}
	if !reflect.DeepEqual(got.Transaction, want) {
		t.Errorf("got %+v\nwant %+v", got.Transaction, want)
	}
	if err := Validate(got.Transaction); err != nil {
		t.Errorf("fallback transaction does not validate: %v", err)
	}
}

func TestFallbackExtractor_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		opts ExtractOptions
		kind ErrorKind
	}{
		{"no amount", "Tu clave fue actualizada", ExtractOptions{ReceivedAt: "2024-01-01T00:00:00Z"}, ErrAmountNotFound},
		{"no date and no received timestamp", "Monto: S/ 10.00", ExtractOptions{}, ErrDatetimeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&FallbackExtractor{}).Extract("", tt.body, tt.opts)
			var extractionErr *ExtractionError
			if !errors.As(err, &extractionErr) || extractionErr.Kind != tt.kind {
				t.Errorf("got %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestFallbackExtractor_ReceivedAt(t *testing.T) {
	got, err := (&FallbackExtractor{}).Extract("", "Monto: S/ 10.00", ExtractOptions{ReceivedAt: "2024-01-01T09:00:00-05:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Transaction.OccurredAt != "2024-01-01T09:00:00-05:00" {
		t.Errorf("OccurredAt = %q", got.Transaction.OccurredAt)
	}
	if got.Transaction.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want the band floor", got.Transaction.Confidence)
	}
	if !reflect.DeepEqual(got.Notes, []string{"occurred_at_from_received_at"}) {
		t.Errorf("notes = %q", got.Notes)
	}
}
