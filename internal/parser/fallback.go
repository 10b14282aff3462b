package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/insightdelivered/bank-notification-parser/internal/extractor"
	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// fallbackField names a value the fallback extractor can recover.
type fallbackField string

const (
	fieldAmount             fallbackField = "amount"
	fieldDate               fallbackField = "date"
	fieldBank               fallbackField = "bank"
	fieldOperationNumber    fallbackField = "operation_number"
	fieldChannel            fallbackField = "channel"
	fieldOriginAccount      fallbackField = "origin_account"
	fieldDestinationAccount fallbackField = "destination_account"
	fieldBeneficiary        fallbackField = "beneficiary"
	fieldOperationType      fallbackField = "operation_type"
	fieldSendingType        fallbackField = "sending_type"
	fieldPaymentType        fallbackField = "payment_type"
	fieldCard               fallbackField = "card"
	fieldMerchant           fallbackField = "merchant"
	fieldServiceName        fallbackField = "service_name"
	fieldServiceHolder      fallbackField = "service_holder"
	fieldCustomerCode       fallbackField = "customer_code"
)

// fallbackFieldOrder fixes merge and iteration order.
var fallbackFieldOrder = []fallbackField{
	fieldAmount, fieldDate, fieldBank, fieldOperationNumber, fieldChannel,
	fieldOriginAccount, fieldDestinationAccount, fieldBeneficiary, fieldOperationType,
	fieldSendingType, fieldPaymentType, fieldCard, fieldMerchant, fieldServiceName,
	fieldServiceHolder, fieldCustomerCode,
}

// labelVocabulary maps folded, lower-cased label fragments to fields. The
// first entry whose fragment occurs in a label wins, so specific fragments
// come before generic ones.
var labelVocabulary = []struct {
	field     fallbackField
	fragments []string
}{
	{fieldOperationNumber, []string{"numero de operacion", "nro de operacion", "nro. de operacion", "n° de operacion", "codigo de operacion", "operacion n"}},
	{fieldCard, []string{"numero de tarjeta"}},
	{fieldServiceHolder, []string{"titular"}},
	{fieldCard, []string{"tarjeta"}},
	{fieldCustomerCode, []string{"codigo de cliente", "codigo de usuario", "codigo de suministro", "suministro", "codigo"}},
	{fieldServiceName, []string{"servicio"}},
	{fieldBank, []string{"banco"}},
	{fieldOriginAccount, []string{"cuenta de origen", "cuenta origen", "cuenta de cargo", "cuenta cargo"}},
	{fieldDestinationAccount, []string{"cuenta de destino", "cuenta destino", "cuenta de abono", "cuenta abono"}},
	{fieldBeneficiary, []string{"beneficiario", "destinatario", "enviado a", "ordenante", "enviado por"}},
	{fieldOperationType, []string{"tipo de operacion", "operacion realizada", "tipo de transferencia"}},
	{fieldSendingType, []string{"tipo de envio"}},
	{fieldPaymentType, []string{"tipo de pago"}},
	{fieldChannel, []string{"canal"}},
	{fieldMerchant, []string{"comercio", "empresa", "establecimiento"}},
	{fieldDate, []string{"fecha", "hora"}},
	{fieldAmount, []string{"monto", "importe", "total"}},
}

// fallbackFields is a field map; missing fields are absent or empty.
type fallbackFields map[fallbackField]string

func (f fallbackFields) setIfEmpty(k fallbackField, v string) {
	if v = strings.TrimSpace(v); v != "" && f[k] == "" {
		f[k] = v
	}
}

// put records a labeled value. Date and time often arrive on separate
// rows, so later date values are appended instead of dropped.
func (f fallbackFields) put(k fallbackField, v string) {
	switch k {
	case fieldAmount:
		f.setIfEmpty(k, v)
	case fieldDate:
		if v = strings.TrimSpace(v); v != "" && f[k] != "" {
			f[k] += " " + v
			return
		}
		f.setIfEmpty(k, v)
	default:
		f.setIfEmpty(k, cleanField(v))
	}
}

// mergeFields fills every field missing in primary from secondary. Values
// are never combined: the first non-empty source wins per field.
func mergeFields(primary, secondary fallbackFields) fallbackFields {
	out := fallbackFields{}
	for _, k := range fallbackFieldOrder {
		out.setIfEmpty(k, primary[k])
		out.setIfEmpty(k, secondary[k])
	}
	return out
}

func classifyLabel(label string) (fallbackField, bool) {
	folded := strings.TrimSpace(strings.TrimSuffix(extractor.FoldLower(label), ":"))
	if folded == "" {
		return "", false
	}
	for _, entry := range labelVocabulary {
		for _, frag := range entry.fragments {
			if strings.Contains(folded, frag) {
				return entry.field, true
			}
		}
	}
	return "", false
}

// maxLabelLength keeps paragraphs from being treated as row labels.
const maxLabelLength = 60

var moneyInText = regexp.MustCompile(`(?:S/\.?|US\$|USD|\$)\s*-?\d[\d.,]*`)

// htmlFields scrapes two-column label/value rows and emphasized amounts.
func htmlFields(body string) fallbackFields {
	fields := fallbackFields{}
	if !extractor.LooksLikeHTML(body) {
		return fields
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fields
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td, th")
		if cells.Length() < 2 {
			return
		}
		labelCell := cells.First()
		if labelCell.Find("table").Length() > 0 {
			return
		}
		label := cellText(labelCell)
		if label == "" || len(label) > maxLabelLength {
			return
		}
		field, ok := classifyLabel(label)
		if !ok {
			return
		}
		fields.put(field, cellText(cells.Eq(1)))
	})

	if fields[fieldAmount] == "" {
		doc.Find("b, strong, em").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if m := moneyInText.FindString(s.Text()); m != "" {
				fields[fieldAmount] = m
				return false
			}
			return true
		})
	}
	return fields
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(extractor.NormalizeLines(s.Text())), " ")
}

var (
	textAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:monto|importe|total|consumo|pago|transferencia|retiro|abono|dep[oó]sito)[^\n\d]{0,40}?((?:S/\.?|US\$|USD|\$)\s*-?\d[\d.,]*)`),
		regexp.MustCompile(`((?:S/\.?|US\$|USD|\$)\s*-?\d[\d.,]*)`),
	}
	textOperationType = regexp.MustCompile(`(?i)\b(transferencia|consumo|compra|retiro|pago de servicio|pago|abono|dep[oó]sito|comisi[oó]n)\b`)
	textChannel       = regexp.MustCompile(`(?i)\b(banca m[oó]vil|banca por internet|app bcp|yape|agente bcp|cajero autom[aá]tico)\b`)
	textBeneficiary   = []*regexp.Regexp{
		labeled([]string{"beneficiario", "destinatario", "enviado a", "ordenante", "enviado por"}, textValue),
	}
	textOrigin = []*regexp.Regexp{
		labeled([]string{"cuenta de origen", "cuenta origen", "cuenta de cargo"}, accountValue),
	}
	textDestination = []*regexp.Regexp{
		labeled([]string{"cuenta de destino", "cuenta destino", "cuenta de abono"}, accountValue),
	}
	// A trailing "por S/ 12.00" after the merchant is not part of it.
	textMerchant = []*regexp.Regexp{
		regexp.MustCompile(`(?im)\bpago en\s+(.+?)` + amountTail),
		regexp.MustCompile(`(?im)\bconsumo.*?\ben\s+(.+?)` + amountTail),
		regexp.MustCompile(`(?im)\bcompra.*?\ben\s+(.+?)` + amountTail),
	}
	lineLabel = regexp.MustCompile(`^([^:\n]{2,60}):\s*(.+)$`)
)

const amountTail = `(?:\s+(?:por|de)\s+(?:S/|US\$|USD|\$).*)?$`

// textFields runs the line map and targeted scans over normalized text.
func textFields(text string) fallbackFields {
	fields := fallbackFields{}
	for _, line := range strings.Split(text, "\n") {
		m := lineLabel.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		field, ok := classifyLabel(m[1])
		if !ok {
			continue
		}
		fields.put(field, m[2])
	}

	fields.setIfEmpty(fieldAmount, firstSubmatch(text, textAmountPatterns))
	fields.setIfEmpty(fieldOperationNumber, firstSubmatch(text, operationIDPatterns))
	if m := textOperationType.FindStringSubmatch(text); m != nil {
		fields.setIfEmpty(fieldOperationType, m[1])
	}
	fields.setIfEmpty(fieldChannel, cleanField(firstSubmatch(text, channelPatterns)))
	if m := textChannel.FindStringSubmatch(text); m != nil {
		fields.setIfEmpty(fieldChannel, m[1])
	}
	fields.setIfEmpty(fieldBeneficiary, cleanField(firstSubmatch(text, textBeneficiary)))
	fields.setIfEmpty(fieldCard, firstSubmatch(text, cardLast4Patterns))
	fields.setIfEmpty(fieldOriginAccount, firstSubmatch(text, textOrigin))
	fields.setIfEmpty(fieldDestinationAccount, firstSubmatch(text, textDestination))
	fields.setIfEmpty(fieldMerchant, cleanField(firstSubmatch(text, textMerchant)))
	return fields
}

// templateFamilies are checked in order; the first family with a keyword in
// the classified content decides the template.
var templateFamilies = []struct {
	template models.Template
	keywords *regexp.Regexp
}{
	{models.TemplateAccountTransfer, regexp.MustCompile(`transferencia|transferiste|envio de dinero|interbancari`)},
	{models.TemplateServicePayment, regexp.MustCompile(`pago de servicio|servicio|recibo|suministro`)},
	{models.TemplateCardPurchase, regexp.MustCompile(`consumo|compra|pago en`)},
	{models.TemplateATMWithdrawal, regexp.MustCompile(`retiro|retiraste|cajero`)},
	{models.TemplateIncomingCredit, regexp.MustCompile(`abono|deposito|recibiste|te depositaron`)},
	{models.TemplateFeeCommission, regexp.MustCompile(`comision|membresia|cobro|cargo`)},
}

func inferTemplate(f fallbackFields, body string) models.Template {
	content := extractor.FoldLower(strings.Join([]string{
		f[fieldOperationType], f[fieldSendingType], f[fieldPaymentType],
		f[fieldMerchant], f[fieldChannel], body,
	}, "\n"))
	for _, family := range templateFamilies {
		if family.keywords.MatchString(content) {
			return family.template
		}
	}
	return models.TemplateAccountTransfer
}

const (
	fallbackBaseline      = 0.6
	fallbackIncrement     = 0.1
	fallbackMinConfidence = 0.7
	fallbackMaxConfidence = 0.95
)

// fallbackConfidence stays inside a narrower band than structured
// extraction.
func fallbackConfidence(f fallbackFields, dateFound bool) float64 {
	c := fallbackBaseline
	if dateFound {
		c += fallbackIncrement
	}
	if f[fieldOperationNumber] != "" {
		c += fallbackIncrement
	}
	if f[fieldOperationType] != "" || f[fieldMerchant] != "" {
		c += fallbackIncrement
	}
	return clamp(roundTo(c, 2), fallbackMinConfidence, fallbackMaxConfidence)
}

// FallbackExtractor is the best-effort strategy used when structured
// extraction is unavailable or fails.
type FallbackExtractor struct{}

// Extract recovers a transaction from the raw HTML (may be empty) and the
// normalized body. It fails when no amount can be found, and when neither the
// document nor opts.ReceivedAt yields a timestamp.
func (e *FallbackExtractor) Extract(html, body string, opts ExtractOptions) (Extraction, error) {
	fields := mergeFields(htmlFields(html), textFields(body))

	money, ok := ParseMoney(fields[fieldAmount])
	if !ok {
		return Extraction{}, &ExtractionError{Kind: ErrAmountNotFound}
	}

	var notes []string
	occurredAt, dateFound := findOccurredAt(fields[fieldDate], opts.location())
	if !dateFound {
		occurredAt, dateFound = findOccurredAt(body, opts.location())
	}
	if !dateFound {
		if opts.ReceivedAt == "" {
			return Extraction{}, &ExtractionError{Kind: ErrDatetimeNotFound}
		}
		occurredAt = opts.ReceivedAt
		notes = append(notes, "occurred_at_from_received_at")
	}

	template := inferTemplate(fields, body)
	confidence := fallbackConfidence(fields, dateFound)
	tx := models.NormalizedTransaction{
		Source:      models.SourceBCP,
		Template:    template,
		OccurredAt:  occurredAt,
		Amount:      money,
		Channel:     fields[fieldChannel],
		Merchant:    firstNonEmpty(fields[fieldMerchant], fields[fieldBeneficiary], fields[fieldServiceName]),
		CardLast4:   lastFourDigits(fields[fieldCard]),
		AccountRef:  compactAccount(firstNonEmpty(fields[fieldDestinationAccount], fields[fieldOriginAccount])),
		OperationID: digitsOnly.ReplaceAllString(fields[fieldOperationNumber], ""),
		Notes: joinNotes(
			fields[fieldOperationType],
			prefixed("Banco destino: ", fields[fieldBank]),
			prefixed("Servicio: ", fields[fieldServiceName]),
			prefixed("Código: ", fields[fieldCustomerCode]),
			prefixed("Titular: ", fields[fieldServiceHolder]),
		),
		Confidence: confidence,
	}
	return Extraction{Transaction: tx, Notes: notes}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func lastFourDigits(s string) string {
	d := digitsOnly.ReplaceAllString(s, "")
	if len(d) < 4 {
		return ""
	}
	return d[len(d)-4:]
}

var accountChars = regexp.MustCompile(`[*xX•\d][*xX•\d\-]*\d`)

func compactAccount(s string) string {
	return accountChars.FindString(strings.Join(strings.Fields(s), ""))
}
