package parser

import (
	"regexp"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// ATMWithdrawalExtractor handles cash withdrawals at ATMs and BCP agents.
//
//	Retiraste dinero de tu cuenta
//	Monto retirado: S/ 200.00
//	Cajero: AV. LARCO 345 MIRAFLORES
//	Cuenta: 191-***456-0-12
type ATMWithdrawalExtractor struct{}

func (e *ATMWithdrawalExtractor) Template() models.Template {
	return models.TemplateATMWithdrawal
}

var (
	atmAmount = []*regexp.Regexp{
		labeled([]string{"monto retirado", "monto del retiro", "importe retirado", "retiro de"}, moneyValue),
		labeled([]string{"retiraste"}, moneyValue),
		labeled([]string{"monto", "importe"}, moneyValue),
	}
	atmLocation = []*regexp.Regexp{
		labeled([]string{"cajero", "lugar", "ubicacion", "agente", "direccion"}, textValue),
		regexp.MustCompile(`(?i)retir[^\n]*?\ben\s+(?:el\s+)?([^\n]+)`),
	}
	atmAccount = []*regexp.Regexp{
		labeled([]string{"cuenta de cargo", "cuenta de origen", "cuenta"}, accountValue),
	}
)

// atmSignals counts amount, date, location, account-or-card and operation id.
const atmSignals = 5

func (e *ATMWithdrawalExtractor) Extract(body string, opts ExtractOptions) (Extraction, error) {
	b := newTxBuilder(e.Template(), body, opts, atmSignals)
	if err := b.amount(atmAmount); err != nil {
		return Extraction{}, err
	}
	if err := b.occurredAt(); err != nil {
		return Extraction{}, err
	}

	b.text("location", &b.tx.Location, atmLocation)
	if !b.account("account_ref", atmAccount) {
		b.cardLast4()
	}
	b.operationID()
	b.channel("Cajero")
	b.balanceAfter()
	return b.build(), nil
}
