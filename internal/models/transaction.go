package models

// EngineVersion tags every ParseResult produced by the parser.
const EngineVersion = "bcp-mail-parser/1.0.0"

// SourceBCP is the issuing-bank tag carried by every NormalizedTransaction.
const SourceBCP = "BCP"

// Template represents a supported transaction notification shape.
type Template string

const (
	TemplateCardPurchase    Template = "card_purchase"
	TemplateOnlinePurchase  Template = "online_purchase"
	TemplateATMWithdrawal   Template = "atm_withdrawal"
	TemplateAccountTransfer Template = "account_transfer"
	TemplateIncomingCredit  Template = "incoming_credit"
	TemplateServicePayment  Template = "service_payment"
	TemplateFeeCommission   Template = "fee_commission"
)

// Templates lists every template in registration order.
var Templates = []Template{
	TemplateCardPurchase,
	TemplateOnlinePurchase,
	TemplateATMWithdrawal,
	TemplateAccountTransfer,
	TemplateIncomingCredit,
	TemplateServicePayment,
	TemplateFeeCommission,
}

// Valid reports whether t belongs to the closed template enumeration.
func (t Template) Valid() bool {
	for _, known := range Templates {
		if t == known {
			return true
		}
	}
	return false
}

// Currency represents a supported ISO currency code.
type Currency string

const (
	CurrencyPEN Currency = "PEN"
	CurrencyUSD Currency = "USD"
)

// Money is a currency-tagged fixed-point amount. Value always has exactly
// two fraction digits, e.g. "1234.50".
type Money struct {
	Value    string   `json:"value"`
	Currency Currency `json:"currency"`
}

// ExchangeRate describes FX usage. No current template models FX, so Used is
// always false.
type ExchangeRate struct {
	Used bool   `json:"used"`
	Rate string `json:"rate,omitempty"`
}

// NormalizedTransaction is the structured record extracted from a bank
// notification email. Optional fields are omitted when unknown.
type NormalizedTransaction struct {
	Source       string       `json:"source"`
	Template     Template     `json:"template"`
	OccurredAt   string       `json:"occurredAt"`
	Amount       Money        `json:"amount"`
	ExchangeRate ExchangeRate `json:"exchangeRate"`
	BalanceAfter *Money       `json:"balanceAfter,omitempty"`
	Channel      string       `json:"channel,omitempty"`
	Merchant     string       `json:"merchant,omitempty"`
	Location     string       `json:"location,omitempty"`
	CardLast4    string       `json:"cardLast4,omitempty"`
	AccountRef   string       `json:"accountRef,omitempty"`
	OperationID  string       `json:"operationId,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	Confidence   float64      `json:"confidence"`
}

// ParseResult is the outcome of parsing a single email.
type ParseResult struct {
	Version     string                 `json:"version"`
	Success     bool                   `json:"success"`
	Template    Template               `json:"template,omitempty"`
	Transaction *NormalizedTransaction `json:"transaction,omitempty"`
	Confidence  float64                `json:"confidence"`
	Notes       []string               `json:"notes,omitempty"`
}

// Email is the per-message input supplied by the mail fetcher.
type Email struct {
	From       string `json:"from,omitempty"`
	Subject    string `json:"subject"`
	HTML       string `json:"html,omitempty"`
	Text       string `json:"text,omitempty"`
	ReceivedAt string `json:"receivedAt,omitempty"`
}
