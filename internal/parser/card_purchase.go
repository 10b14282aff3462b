package parser

import (
	"regexp"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// CardPurchaseExtractor handles in-store card consumption notices.
//
// Typical layout:
//
//	Realizaste un consumo con tu Tarjeta de Crédito BCP
//	Monto de consumo: S/ 23.60
//	Fecha y hora: 15/01/2024 10:32 pm
//	Empresa: TAMBO LARCO
//	Número de tarjeta: **** 1234
//	Número de operación: 348298
type CardPurchaseExtractor struct{}

func (e *CardPurchaseExtractor) Template() models.Template {
	return models.TemplateCardPurchase
}

var (
	cardPurchaseAmount = []*regexp.Regexp{
		labeled([]string{"monto de consumo", "monto del consumo", "total del consumo", "monto total", "importe"}, moneyValue),
		labeled([]string{"consumo de", "consumo por"}, moneyValue),
		labeled([]string{"monto"}, moneyValue),
	}
	cardPurchaseMerchant = []*regexp.Regexp{
		labeled([]string{"comercio", "empresa", "establecimiento"}, textValue),
		regexp.MustCompile(`(?i)consumo[^\n]*?\ben\s+([^\n]+)`),
	}
	cardPurchaseLocation = []*regexp.Regexp{
		labeled([]string{"lugar", "ubicacion", "ciudad"}, textValue),
	}
)

// cardPurchaseSignals counts amount, date, card, merchant, operation id and
// channel-or-location.
const cardPurchaseSignals = 6

func (e *CardPurchaseExtractor) Extract(body string, opts ExtractOptions) (Extraction, error) {
	b := newTxBuilder(e.Template(), body, opts, cardPurchaseSignals)
	if err := b.amount(cardPurchaseAmount); err != nil {
		return Extraction{}, err
	}
	if err := b.occurredAt(); err != nil {
		return Extraction{}, err
	}

	b.cardLast4()
	b.text("merchant", &b.tx.Merchant, cardPurchaseMerchant)
	b.operationID()
	if !b.text("channel", &b.tx.Channel, channelPatterns) {
		b.text("location", &b.tx.Location, cardPurchaseLocation)
	}
	b.balanceAfter()
	return b.build(), nil
}
