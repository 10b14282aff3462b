package parser

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/insightdelivered/bank-notification-parser/internal/extractor"
	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// Extractor defines the interface for per-template field extractors.
type Extractor interface {
	// Extract takes the normalized email body and returns a transaction, or an
	// *ExtractionError when a mandatory field is missing.
	Extract(body string, opts ExtractOptions) (Extraction, error)
	// Template returns the template the extractor handles.
	Template() models.Template
}

// NewExtractor returns the extractor registered for the given template.
func NewExtractor(t models.Template) (Extractor, error) {
	switch t {
	case models.TemplateCardPurchase:
		return &CardPurchaseExtractor{}, nil
	case models.TemplateOnlinePurchase:
		return &OnlinePurchaseExtractor{}, nil
	case models.TemplateATMWithdrawal:
		return &ATMWithdrawalExtractor{}, nil
	case models.TemplateAccountTransfer:
		return &AccountTransferExtractor{}, nil
	case models.TemplateIncomingCredit:
		return &IncomingCreditExtractor{}, nil
	case models.TemplateServicePayment:
		return &ServicePaymentExtractor{}, nil
	case models.TemplateFeeCommission:
		return &FeeCommissionExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w for template %q", ErrNoExtractor, t)
	}
}

// Detect picks the template whose subject matches and whose body anchors
// match most often. body must already be normalized; it is ASCII-folded
// here. Ties go to the higher priority, then to the earlier registration.
func Detect(subject, body string) (models.Template, bool) {
	return detect(templateLibrary, subject, extractor.Fold(body))
}

func detect(library []TemplateDefinition, subject, foldedBody string) (models.Template, bool) {
	var (
		best      *TemplateDefinition
		bestCount int
	)
	for i := range library {
		def := &library[i]
		if !anyMatch(def.SubjectPatterns, subject) {
			continue
		}
		count := 0
		for _, re := range def.BodyAnchorPatterns {
			if re.MatchString(foldedBody) {
				count++
			}
		}
		if count < def.MinimumAnchorMatches {
			continue
		}
		if best == nil || count > bestCount || (count == bestCount && def.Priority > best.Priority) {
			best, bestCount = def, count
		}
	}
	if best == nil {
		return "", false
	}
	return best.Name, true
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// notificationSenders are addresses the bank sends transaction notices from.
var notificationSenders = []string{
	"notificaciones@notificacionesbcp.com.pe",
	"bcp@notificacionesbcp.com.pe",
	"bancaporinternet@bcp.com.pe",
	"alertas@bcp.com.pe",
}

// transactionalHints run against the folded, lower-cased subject and body.
var transactionalHints = regexp.MustCompile(
	`monto|consumo|transferencia|transferiste|deposito|retiro|pago|pagaste|(?:numero|nro\.?) de operacion`,
)

// IsPotentiallyTransactional is a cheap pre-filter: it accepts emails the
// detector recognizes, or emails from a known notification sender that carry
// at least one transactional keyword.
func IsPotentiallyTransactional(subject, body, sender string) bool {
	normalized := extractor.ExtractText(body)
	if _, ok := Detect(subject, normalized); ok {
		return true
	}
	if !isNotificationSender(sender) {
		return false
	}
	return transactionalHints.MatchString(extractor.FoldLower(subject + "\n" + normalized))
}

func isNotificationSender(sender string) bool {
	addr := strings.TrimSpace(sender)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}
	addr = strings.ToLower(strings.Trim(addr, "<> "))
	for _, known := range notificationSenders {
		if addr == known {
			return true
		}
	}
	return false
}
