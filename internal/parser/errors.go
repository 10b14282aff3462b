package parser

import (
	"errors"
	"fmt"

	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

var (
	// ErrTemplateNotDetected is returned when no template matches an email.
	ErrTemplateNotDetected = errors.New("template not detected")
	// ErrNoExtractor is returned for a template without a registered extractor.
	ErrNoExtractor = errors.New("no extractor registered")
)

// ErrorKind classifies why an extractor gave up.
type ErrorKind string

const (
	ErrAmountNotFound   ErrorKind = "amount_not_found"
	ErrInvalidAmount    ErrorKind = "invalid_amount"
	ErrDatetimeNotFound ErrorKind = "datetime_not_found"
)

// ExtractionError is returned when a mandatory field cannot be extracted.
type ExtractionError struct {
	Kind     ErrorKind
	Template models.Template
}

func (e *ExtractionError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("fallback: %s", e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Template, e.Kind)
}

// ValidationError reports a transaction that does not satisfy the
// NormalizedTransaction shape.
type ValidationError struct {
	Template models.Template
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid transaction: %v", e.Template, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
