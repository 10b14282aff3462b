package parser

import (
	"regexp"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// AccountTransferExtractor handles outgoing transfers to own accounts,
// third parties and other banks.
//
//	Constancia de transferencia
//	Monto transferido: S/ 1,250.00
//	Cuenta de origen: 191-****123-0-45
//	Cuenta de destino: 0011-0123-45678901
//	Beneficiario: MARIA PEREZ
//	Banco destino: BBVA
//	Número de operación: 00123456
type AccountTransferExtractor struct{}

func (e *AccountTransferExtractor) Template() models.Template {
	return models.TemplateAccountTransfer
}

var (
	transferAmount = []*regexp.Regexp{
		labeled([]string{"monto transferido", "monto enviado", "monto de la transferencia", "importe transferido"}, moneyValue),
		labeled([]string{"transferiste", "transferencia de", "transferencia por"}, moneyValue),
		labeled([]string{"monto", "importe"}, moneyValue),
	}
	transferBeneficiary = []*regexp.Regexp{
		labeled([]string{"beneficiario", "destinatario", "nombre del beneficiario", "enviado a"}, textValue),
		regexp.MustCompile(`(?i:transferiste)[^\n]*?\ba\s+([A-ZÁÉÍÓÚÑ][^\n]+)`),
	}
	transferDestination = []*regexp.Regexp{
		labeled([]string{"cuenta de destino", "cuenta destino", "cuenta de abono", "cci de destino", "cci"}, accountValue),
	}
	transferOrigin = []*regexp.Regexp{
		labeled([]string{"cuenta de origen", "cuenta origen", "cuenta de cargo", "cuenta cargo"}, accountValue),
	}
	transferBank = []*regexp.Regexp{
		labeled([]string{"banco de destino", "banco destino", "entidad destino"}, textValue),
	}
	transferType = []*regexp.Regexp{
		labeled([]string{"tipo de transferencia", "tipo de envio", "tipo de operacion"}, textValue),
	}
)

// transferSignals counts amount, date, beneficiary, account, operation id
// and channel-or-destination-bank.
const transferSignals = 6

func (e *AccountTransferExtractor) Extract(body string, opts ExtractOptions) (Extraction, error) {
	b := newTxBuilder(e.Template(), body, opts, transferSignals)
	if err := b.amount(transferAmount); err != nil {
		return Extraction{}, err
	}
	if err := b.occurredAt(); err != nil {
		return Extraction{}, err
	}

	b.text("beneficiary", &b.tx.Merchant, transferBeneficiary)
	if !b.account("destination_account", transferDestination) {
		b.account("origin_account", transferOrigin)
	}
	b.operationID()

	bank := cleanField(firstSubmatch(body, transferBank))
	if !b.text("channel", &b.tx.Channel, channelPatterns) && bank != "" {
		b.signals++
	}
	kind := cleanField(firstSubmatch(body, transferType))
	b.tx.Notes = joinNotes(kind, prefixed("Banco destino: ", bank))
	b.balanceAfter()
	return b.build(), nil
}
