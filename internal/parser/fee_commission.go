package parser

import (
	"regexp"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// FeeCommissionExtractor handles bank fees, commissions and membership
// charges debited from an account or card.
type FeeCommissionExtractor struct{}

func (e *FeeCommissionExtractor) Template() models.Template {
	return models.TemplateFeeCommission
}

var (
	feeAmount = []*regexp.Regexp{
		labeled([]string{"monto de la comision", "monto de comision", "monto del cargo", "monto cobrado", "importe de la comision"}, moneyValue),
		labeled([]string{"comision de", "cargo de", "cobro de"}, moneyValue),
		labeled([]string{"monto", "importe"}, moneyValue),
	}
	feeConcept = []*regexp.Regexp{
		labeled([]string{"concepto", "motivo", "tipo de comision", "descripcion"}, textValue),
		regexp.MustCompile(`(?i)((?:comisi[oó]n|cobro|cargo) (?:de|por) [^\n\d$]+?)\s*(?:(?:de|por)\s+)?(?:S/|US\$|USD|\$|\d|\n|$)`),
	}
	feeAccount = []*regexp.Regexp{
		labeled([]string{"cuenta de cargo", "cuenta cargo", "cuenta"}, accountValue),
	}
)

// feeSignals counts amount, date, concept and account-or-card.
const feeSignals = 4

func (e *FeeCommissionExtractor) Extract(body string, opts ExtractOptions) (Extraction, error) {
	b := newTxBuilder(e.Template(), body, opts, feeSignals)
	if err := b.amount(feeAmount); err != nil {
		return Extraction{}, err
	}
	if err := b.occurredAt(); err != nil {
		return Extraction{}, err
	}

	b.text("concept", &b.tx.Notes, feeConcept)
	if !b.account("account_ref", feeAccount) {
		b.cardLast4()
	}
	// Fee notices rarely carry an operation id; a miss is not noted.
	if v := digitsOnly.ReplaceAllString(firstSubmatch(body, operationIDPatterns), ""); v != "" {
		b.tx.OperationID = v
		b.signals++
	}
	b.balanceAfter()
	return b.build(), nil
}
