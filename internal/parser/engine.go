package parser

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/bank-notification-parser/internal/extractor"
	"github.com/insightdelivered/bank-notification-parser/internal/models"
)

// Strategy names which extraction path produced a result.
type Strategy string

const (
	StrategyTemplate Strategy = "template"
	StrategyFallback Strategy = "fallback"
	StrategyNone     Strategy = "none"
)

// Diagnostic notes recorded on a ParseResult.
const (
	NoteFallbackParser      = "fallback_parser"
	NoteFallbackFailed      = "fallback_failed"
	NoteTemplateNotDetected = "template_not_detected"
	NoteNoExtractor         = "extractor_not_registered"
	NoteValidationFailed    = "validation_failed"
	NoteExtractionFailed    = "extraction_failed"
)

// Engine parses bank notification emails. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	log      zerolog.Logger
	location *time.Location
	fallback *FallbackExtractor
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Email bodies are never logged.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithLocation sets the bank-local zone applied to document dates.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// NewEngine returns an Engine with a no-op logger and the Lima offset.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		log:      zerolog.Nop(),
		location: limaZone,
		fallback: &FallbackExtractor{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Parse runs the default engine.
func Parse(email models.Email) models.ParseResult {
	return defaultEngine.Parse(email)
}

// Outcome is a ParseResult plus the strategy that produced it.
type Outcome struct {
	Result   models.ParseResult
	Strategy Strategy
}

// Parse never fails: every error is absorbed into the returned result.
func (e *Engine) Parse(email models.Email) models.ParseResult {
	return e.ParseOutcome(email).Result
}

// ParseOutcome is Parse with the routing decision exposed for metrics.
func (e *Engine) ParseOutcome(email models.Email) Outcome {
	body := extractor.ExtractText(email.HTML)
	if body == "" {
		body = extractor.ExtractText(email.Text)
	}
	opts := ExtractOptions{ReceivedAt: email.ReceivedAt, Location: e.location}

	extraction, err := e.structured(email.Subject, body, opts)
	if err == nil {
		tx := extraction.Transaction
		return Outcome{
			Strategy: StrategyTemplate,
			Result: models.ParseResult{
				Version:     models.EngineVersion,
				Success:     true,
				Template:    tx.Template,
				Transaction: &tx,
				Confidence:  tx.Confidence,
				Notes:       extraction.Notes,
			},
		}
	}

	reason := fallbackReason(err)
	e.log.Debug().
		Str("reason", reason).
		Str("subject", email.Subject).
		Msg("routing to fallback parser")

	extraction, err = e.fallback.Extract(email.HTML, body, opts)
	if err == nil {
		err = Validate(extraction.Transaction)
	}
	if err != nil {
		e.log.Debug().Err(err).Msg("fallback parser failed")
		return Outcome{
			Strategy: StrategyNone,
			Result: models.ParseResult{
				Version:    models.EngineVersion,
				Success:    false,
				Confidence: 0,
				Notes:      []string{reason, NoteFallbackFailed, failureDetail(err)},
			},
		}
	}

	tx := extraction.Transaction
	notes := append([]string{reason, NoteFallbackParser}, extraction.Notes...)
	return Outcome{
		Strategy: StrategyFallback,
		Result: models.ParseResult{
			Version:     models.EngineVersion,
			Success:     true,
			Template:    tx.Template,
			Transaction: &tx,
			Confidence:  tx.Confidence,
			Notes:       notes,
		},
	}
}

// IsPotentiallyTransactional runs the cheap pre-filter.
func (e *Engine) IsPotentiallyTransactional(subject, body, sender string) bool {
	return IsPotentiallyTransactional(subject, body, sender)
}

func (e *Engine) structured(subject, body string, opts ExtractOptions) (Extraction, error) {
	template, ok := Detect(subject, body)
	if !ok {
		return Extraction{}, ErrTemplateNotDetected
	}
	ex, err := NewExtractor(template)
	if err != nil {
		return Extraction{}, err
	}
	extraction, err := ex.Extract(body, opts)
	if err != nil {
		return Extraction{}, err
	}
	if err := Validate(extraction.Transaction); err != nil {
		return Extraction{}, err
	}
	return extraction, nil
}

func fallbackReason(err error) string {
	var (
		extractionErr *ExtractionError
		validationErr *ValidationError
	)
	switch {
	case errors.Is(err, ErrTemplateNotDetected):
		return NoteTemplateNotDetected
	case errors.Is(err, ErrNoExtractor):
		return NoteNoExtractor
	case errors.As(err, &extractionErr):
		return NoteExtractionFailed + ":" + string(extractionErr.Template) + ":" + string(extractionErr.Kind)
	case errors.As(err, &validationErr):
		return NoteValidationFailed + ":" + string(validationErr.Template)
	default:
		return NoteExtractionFailed
	}
}

func failureDetail(err error) string {
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return string(extractionErr.Kind)
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NoteValidationFailed
	}
	return err.Error()
}
