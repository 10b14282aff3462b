package parser

import (
	"regexp"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// OnlinePurchaseExtractor handles card-not-present (internet) purchases.
// These notices rarely carry a channel label; the channel defaults to
// "Internet".
type OnlinePurchaseExtractor struct{}

func (e *OnlinePurchaseExtractor) Template() models.Template {
	return models.TemplateOnlinePurchase
}

var (
	onlinePurchaseAmount = []*regexp.Regexp{
		labeled([]string{"monto de la compra", "monto de compra", "monto de consumo", "monto total", "total de la compra", "importe"}, moneyValue),
		labeled([]string{"compra por internet de", "compra por internet por", "compra de", "compra por"}, moneyValue),
		labeled([]string{"monto"}, moneyValue),
	}
	onlinePurchaseMerchant = []*regexp.Regexp{
		labeled([]string{"comercio", "empresa", "sitio web", "establecimiento"}, textValue),
		regexp.MustCompile(`(?i)(?:compra|consumo|pago)[^\n]*?\ben\s+([^\n]+)`),
	}
)

const onlinePurchaseSignals = 5

func (e *OnlinePurchaseExtractor) Extract(body string, opts ExtractOptions) (Extraction, error) {
	b := newTxBuilder(e.Template(), body, opts, onlinePurchaseSignals)
	if err := b.amount(onlinePurchaseAmount); err != nil {
		return Extraction{}, err
	}
	if err := b.occurredAt(); err != nil {
		return Extraction{}, err
	}

	b.cardLast4()
	b.text("merchant", &b.tx.Merchant, onlinePurchaseMerchant)
	b.operationID()
	b.channel("Internet")
	b.balanceAfter()
	return b.build(), nil
}
