package parser

import (
	"errors"
	"testing"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

func validTransaction() models.NormalizedTransaction {
	return models.NormalizedTransaction{
		Source:     models.SourceBCP,
		Template:   models.TemplateCardPurchase,
		OccurredAt: "2024-01-15T22:32:00-05:00",
		Amount:     models.Money{Value: "23.60", Currency: models.CurrencyPEN},
		CardLast4:  "1234",
		Confidence: 0.8333,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.NormalizedTransaction)
		wantErr bool
	}{
		{"valid", func(*models.NormalizedTransaction) {}, false},
		{"utc received timestamp", func(tx *models.NormalizedTransaction) { tx.OccurredAt = "2024-01-15T12:00:00Z" }, false},
		{"fractional seconds", func(tx *models.NormalizedTransaction) { tx.OccurredAt = "2024-01-15T12:00:00.123+00:00" }, false},
		{"balance after", func(tx *models.NormalizedTransaction) {
			tx.BalanceAfter = &models.Money{Value: "10.00", Currency: models.CurrencyUSD}
		}, false},
		{"wrong source", func(tx *models.NormalizedTransaction) { tx.Source = "BBVA" }, true},
		{"unknown template", func(tx *models.NormalizedTransaction) { tx.Template = "wire" }, true},
		{"missing template", func(tx *models.NormalizedTransaction) { tx.Template = "" }, true},
		{"one fraction digit", func(tx *models.NormalizedTransaction) { tx.Amount.Value = "23.6" }, true},
		{"empty amount", func(tx *models.NormalizedTransaction) { tx.Amount.Value = "" }, true},
		{"unknown currency", func(tx *models.NormalizedTransaction) { tx.Amount.Currency = "EUR" }, true},
		{"no offset", func(tx *models.NormalizedTransaction) { tx.OccurredAt = "2024-01-15T22:32:00" }, true},
		{"free-form date", func(tx *models.NormalizedTransaction) { tx.OccurredAt = "ayer" }, true},
		{"card last4 not digits", func(tx *models.NormalizedTransaction) { tx.CardLast4 = "12a4" }, true},
		{"card last4 too long", func(tx *models.NormalizedTransaction) { tx.CardLast4 = "12345" }, true},
		{"confidence above one", func(tx *models.NormalizedTransaction) { tx.Confidence = 1.5 }, true},
		{"negative confidence", func(tx *models.NormalizedTransaction) { tx.Confidence = -0.1 }, true},
		{"bad balance", func(tx *models.NormalizedTransaction) {
			tx.BalanceAfter = &models.Money{Value: "1.5", Currency: models.CurrencyPEN}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := Validate(tx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("expected *ValidationError, got %T", err)
				}
			}
		})
	}
}
