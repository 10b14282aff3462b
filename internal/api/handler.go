package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/insightdelivered/bank-notification-parser/internal/config"
	"github.com/insightdelivered/bank-notification-parser/internal/gate"
	"github.com/insightdelivered/bank-notification-parser/internal/logger"
	"github.com/insightdelivered/bank-notification-parser/internal/models"
	"github.com/insightdelivered/bank-notification-parser/internal/parser"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// ParseResponse is the JSON response from the /api/parse endpoint.
type ParseResponse struct {
	models.ParseResult
	Accepted  bool   `json:"accepted"`
	Rejection string `json:"rejection,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// PrecheckResponse is the JSON response from the /api/precheck endpoint.
type PrecheckResponse struct {
	PotentiallyTransactional bool   `json:"potentiallyTransactional"`
	RequestID                string `json:"requestId,omitempty"`
}

// ErrorResponse is returned for malformed requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Server holds the HTTP handlers for the API.
type Server struct {
	engine        *parser.Engine
	minConfidence float64
	limiter       *rate.Limiter
	log           zerolog.Logger
	metrics       *Metrics
}

// NewServer builds a Server from the loaded configuration.
func NewServer(engine *parser.Engine, cfg config.Config, log zerolog.Logger) *Server {
	s := &Server{
		engine:        engine,
		minConfidence: cfg.MinConfidence,
		log:           log,
		metrics:       NewMetrics(),
	}
	if cfg.Server.RateLimit > 0 {
		burst := int(2 * cfg.Server.RateLimit)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), burst)
	}
	return s
}

// App returns a fiber app with every route registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "bank-notification-parser",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(recover.New())
	app.Use(s.requestID)

	app.Get("/api/health", HandleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	limited := app.Group("/api", s.rateLimit)
	limited.Post("/parse", s.HandleParse)
	limited.Post("/precheck", s.HandlePrecheck)
	return app
}

// HandleHealth reports liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": models.EngineVersion,
	})
}

// HandleParse parses one Email and applies the acceptance gate.
func (s *Server) HandleParse(c *fiber.Ctx) error {
	start := time.Now()
	email, err := decodeEmail(c)
	if err != nil {
		return err
	}

	outcome := s.engine.ParseOutcome(email)
	result := outcome.Result
	s.metrics.ObserveParse(string(outcome.Strategy), string(result.Template), result.Success)

	resp := ParseResponse{ParseResult: result, RequestID: requestIDFrom(c)}
	reason := ""
	if err := gate.Accept(result, s.minConfidence); err != nil {
		var rej *gate.RejectionError
		if errors.As(err, &rej) {
			reason = string(rej.Reason)
		}
		resp.Rejection = err.Error()
	} else {
		resp.Accepted = true
	}
	s.metrics.ObserveGate(reason)
	s.metrics.ObserveLatency("parse", time.Since(start).Seconds())

	l := logger.FromContext(c.UserContext())
	l.Info().
		Str("strategy", string(outcome.Strategy)).
		Str("template", string(result.Template)).
		Float64("confidence", result.Confidence).
		Bool("accepted", resp.Accepted).
		Msg("email parsed")

	return c.JSON(resp)
}

// HandlePrecheck runs the cheap transactional pre-filter.
func (s *Server) HandlePrecheck(c *fiber.Ctx) error {
	email, err := decodeEmail(c)
	if err != nil {
		return err
	}
	body := email.HTML
	if strings.TrimSpace(body) == "" {
		body = email.Text
	}
	return c.JSON(PrecheckResponse{
		PotentiallyTransactional: s.engine.IsPotentiallyTransactional(email.Subject, body, email.From),
		RequestID:                requestIDFrom(c),
	})
}

func decodeEmail(c *fiber.Ctx) (models.Email, error) {
	var email models.Email
	if err := json.Unmarshal(c.Body(), &email); err != nil {
		return models.Email{}, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	if strings.TrimSpace(email.HTML) == "" && strings.TrimSpace(email.Text) == "" {
		return models.Email{}, fiber.NewError(fiber.StatusBadRequest, "html or text is required")
	}
	return email, nil
}

func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(RequestIDHeader, id)
	c.Set(RequestIDHeader, id)
	l := logger.WithFields(s.log, map[string]interface{}{"request_id": id})
	c.SetUserContext(logger.WithContext(c.UserContext(), l))
	return c.Next()
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(RequestIDHeader).(string)
	return id
}

func (s *Server) rateLimit(c *fiber.Ctx) error {
	if s.limiter != nil && !s.limiter.Allow() {
		return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
	}
	return c.Next()
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		l := logger.FromContext(c.UserContext())
		l.Error().Err(err).Msg("request failed")
	}
	return c.Status(code).JSON(ErrorResponse{Success: false, Error: err.Error()})
}
