package parser

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// ExtractOptions carries per-email context into an extractor.
type ExtractOptions struct {
	// ReceivedAt is the email's received timestamp, used verbatim when the
	// document carries no date.
	ReceivedAt string
	// Location is the bank-local fixed offset for document dates.
	Location *time.Location
}

func (o ExtractOptions) location() *time.Location {
	if o.Location == nil {
		return limaZone
	}
	return o.Location
}

// Extraction is a successful extractor outcome plus its diagnostics.
type Extraction struct {
	Transaction models.NormalizedTransaction
	Notes       []string
}

// Shared secondary-field patterns. Templates combine them with their own.
var (
	operationIDPatterns = []*regexp.Regexp{
		labeled([]string{"numero de operacion", "nro. de operacion", "nro de operacion", "n° de operacion", "codigo de operacion", "operacion n°", "operacion"}, digitsValue),
	}
	cardLast4Patterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)tarjeta[^\n]{0,60}?(?:\*+|x{2,}|•+|terminad[ao] en|que termina en)\s*(\d{4})\b`),
		regexp.MustCompile(`(?i)tarjeta[^\n\d]{0,40}\d{4}[\s*x•-]+(?:\d{2,4}[\s*x•-]+)*(\d{4})\b`),
		regexp.MustCompile(`(?i)tarjeta[^\n\d]{0,40}(\d{4})\b`),
	}
	channelPatterns = []*regexp.Regexp{
		labeled([]string{"canal"}, textValue),
	}
	balancePatterns = []*regexp.Regexp{
		labeled([]string{"saldo disponible", "saldo contable", "saldo"}, moneyValue),
	}
	digitsOnly = regexp.MustCompile(`\D`)
)

// firstSubmatch returns the first capture group of the first pattern that
// matches text.
func firstSubmatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// txBuilder accumulates fields and confidence signals for one extraction.
type txBuilder struct {
	body    string
	opts    ExtractOptions
	tx      models.NormalizedTransaction
	notes   []string
	signals int
	target  int
}

func newTxBuilder(template models.Template, body string, opts ExtractOptions, target int) *txBuilder {
	return &txBuilder{
		body: body,
		opts: opts,
		tx: models.NormalizedTransaction{
			Source:   models.SourceBCP,
			Template: template,
		},
		target: target,
	}
}

func (b *txBuilder) fail(kind ErrorKind) error {
	return &ExtractionError{Kind: kind, Template: b.tx.Template}
}

func (b *txBuilder) note(n string) {
	b.notes = append(b.notes, n)
}

// amount is the only mandatory field.
func (b *txBuilder) amount(patterns []*regexp.Regexp) error {
	raw := firstSubmatch(b.body, patterns)
	if raw == "" {
		return b.fail(ErrAmountNotFound)
	}
	money, ok := ParseMoney(raw)
	if !ok {
		return b.fail(ErrInvalidAmount)
	}
	b.tx.Amount = money
	b.signals++
	return nil
}

func (b *txBuilder) occurredAt() error {
	if ts, ok := findOccurredAt(b.body, b.opts.location()); ok {
		b.tx.OccurredAt = ts
		b.signals++
		return nil
	}
	if b.opts.ReceivedAt == "" {
		return b.fail(ErrDatetimeNotFound)
	}
	b.tx.OccurredAt = b.opts.ReceivedAt
	b.note("occurred_at_from_received_at")
	return nil
}

// text fills dst with the cleaned capture of the first matching pattern.
func (b *txBuilder) text(name string, dst *string, patterns []*regexp.Regexp) bool {
	v := cleanField(firstSubmatch(b.body, patterns))
	if v == "" {
		b.note(name + "_not_found")
		return false
	}
	*dst = v
	b.signals++
	return true
}

func (b *txBuilder) operationID() bool {
	return b.digits("operation_id", &b.tx.OperationID, operationIDPatterns)
}

func (b *txBuilder) cardLast4() bool {
	return b.digits("card_last4", &b.tx.CardLast4, cardLast4Patterns)
}

func (b *txBuilder) digits(name string, dst *string, patterns []*regexp.Regexp) bool {
	v := digitsOnly.ReplaceAllString(firstSubmatch(b.body, patterns), "")
	if v == "" {
		b.note(name + "_not_found")
		return false
	}
	*dst = v
	b.signals++
	return true
}

func (b *txBuilder) account(name string, patterns []*regexp.Regexp) bool {
	v := strings.Join(strings.Fields(firstSubmatch(b.body, patterns)), "")
	if v == "" {
		b.note(name + "_not_found")
		return false
	}
	b.tx.AccountRef = v
	b.signals++
	return true
}

func (b *txBuilder) channel(fallback string) {
	if b.text("channel", &b.tx.Channel, channelPatterns) {
		return
	}
	if fallback != "" {
		b.tx.Channel = fallback
	}
}

// balanceAfter is informational and does not count as a signal.
func (b *txBuilder) balanceAfter() {
	raw := firstSubmatch(b.body, balancePatterns)
	if raw == "" {
		return
	}
	if money, ok := ParseMoney(raw); ok {
		b.tx.BalanceAfter = &money
	}
}

func (b *txBuilder) build() Extraction {
	b.tx.Confidence = signalConfidence(b.signals, b.target)
	return Extraction{Transaction: b.tx, Notes: b.notes}
}

// signalConfidence is min(1, max(0, found/target)) rounded to 4 places.
func signalConfidence(found, target int) float64 {
	if target <= 0 {
		return 0
	}
	return clamp(roundTo(float64(found)/float64(target), 4), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// joinNotes builds the free-text summary from the non-empty parts.
func joinNotes(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " | ")
}

func prefixed(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}
