// Package gate implements the caller-side acceptance check applied to parse
// results before a transaction is persisted.
package gate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// DefaultMinConfidence is used when no threshold is configured.
const DefaultMinConfidence = 0.7

// Reason explains why a result was rejected.
type Reason string

const (
	ReasonNotSuccessful Reason = "not_successful"
	ReasonLowConfidence Reason = "low_confidence"
	ReasonInvalidAmount Reason = "invalid_amount"
	ReasonNonPositive   Reason = "non_positive_amount"
	ReasonNoTransaction Reason = "missing_transaction"
)

// RejectionError is returned by Accept for results that must be skipped.
type RejectionError struct {
	Reason Reason
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("rejected: %s", e.Reason)
	}
	return fmt.Sprintf("rejected: %s: %s", e.Reason, e.Detail)
}

// Accept returns nil when result may be persisted: it succeeded, its
// confidence is at least minConfidence and its amount is a positive number.
func Accept(result models.ParseResult, minConfidence float64) error {
	if !result.Success {
		return &RejectionError{Reason: ReasonNotSuccessful}
	}
	if result.Transaction == nil {
		return &RejectionError{Reason: ReasonNoTransaction}
	}
	if result.Confidence < minConfidence {
		return &RejectionError{
			Reason: ReasonLowConfidence,
			Detail: fmt.Sprintf("%.4f < %.4f", result.Confidence, minConfidence),
		}
	}
	amount, err := decimal.NewFromString(result.Transaction.Amount.Value)
	if err != nil {
		return &RejectionError{Reason: ReasonInvalidAmount, Detail: result.Transaction.Amount.Value}
	}
	if !amount.IsPositive() {
		return &RejectionError{Reason: ReasonNonPositive, Detail: amount.StringFixed(2)}
	}
	return nil
}
