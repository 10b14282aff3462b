package parser

import (
	"regexp"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// IncomingCreditExtractor handles deposits and transfers received into one
// of the customer's accounts.
type IncomingCreditExtractor struct{}

func (e *IncomingCreditExtractor) Template() models.Template {
	return models.TemplateIncomingCredit
}

var (
	creditAmount = []*regexp.Regexp{
		labeled([]string{"monto recibido", "monto abonado", "monto depositado", "monto del abono", "importe abonado"}, moneyValue),
		labeled([]string{"recibiste", "te depositaron", "te transfirieron", "abono de", "deposito de"}, moneyValue),
		labeled([]string{"monto", "importe"}, moneyValue),
	}
	creditSender = []*regexp.Regexp{
		labeled([]string{"ordenante", "enviado por", "remitente", "nombre del ordenante", "de parte de"}, textValue),
		regexp.MustCompile(`(?i:recibiste|te depositaron|te transfirieron)[^\n]*?\bde\s+([A-ZÁÉÍÓÚÑ][^\n]+)`),
	}
	creditAccount = []*regexp.Regexp{
		labeled([]string{"cuenta de abono", "cuenta abono", "cuenta de destino", "cuenta destino", "en tu cuenta", "cuenta"}, accountValue),
	}
	creditConcept = []*regexp.Regexp{
		labeled([]string{"concepto", "motivo", "descripcion"}, textValue),
	}
)

// creditSignals counts amount, date, sender, account and operation id.
const creditSignals = 5

func (e *IncomingCreditExtractor) Extract(body string, opts ExtractOptions) (Extraction, error) {
	b := newTxBuilder(e.Template(), body, opts, creditSignals)
	if err := b.amount(creditAmount); err != nil {
		return Extraction{}, err
	}
	if err := b.occurredAt(); err != nil {
		return Extraction{}, err
	}

	b.text("sender", &b.tx.Merchant, creditSender)
	b.account("account_ref", creditAccount)
	b.operationID()
	b.channel("")
	b.tx.Notes = cleanField(firstSubmatch(body, creditConcept))
	b.balanceAfter()
	return b.build(), nil
}
