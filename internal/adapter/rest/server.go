// Package rest exposes the valuation service over HTTP/JSON.
package rest

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/simaogato/valuation-service/internal/domain"
	"github.com/simaogato/valuation-service/internal/usecase/valuation"
)

// Valuator serves one validated valuation request
type Valuator interface {
	Valuate(ctx context.Context, in valuation.Input) (*valuation.Result, error)
}

// Server wraps the fiber app serving the valuation API
type Server struct {
	app      *fiber.App
	valuator Valuator
	apiToken string
	logger   *slog.Logger
}

// NewServer creates the HTTP server and registers its routes
func NewServer(valuator Valuator, apiToken string, logger *slog.Logger) *Server {
	s := &Server{
		valuator: valuator,
		apiToken: apiToken,
		logger:   logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "valuation-service",
		ErrorHandler: s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)

	s.initializeRoutes()

	return s
}

func (s *Server) initializeRoutes() {
	s.app.Get("/healthz", s.health)

	v1 := s.app.Group("/v1", s.requireToken)
	v1.Post("/valuations", s.calculateValuation)
}

// App exposes the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) calculateValuation(c fiber.Ctx) error {
	var req ValuationRequestSchema
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if req.AccountIDs == nil {
		req.AccountIDs = []string{}
	}

	result, err := s.valuator.Valuate(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(newValuationResponse(result))
}

// requireToken accepts "Authorization: Bearer <token>"
func (s *Server) requireToken(c fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) != 1 {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	return c.Next()
}

func (s *Server) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	code := c.Response().StatusCode()
	if err != nil {
		code = statusCode(err)
	}
	s.logger.InfoContext(c.Context(), "http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", code,
		"duration", time.Since(start),
	)

	return err
}

// handleError maps domain errors onto HTTP status codes
func (s *Server) handleError(c fiber.Ctx, err error) error {
	code := statusCode(err)
	if code >= fiber.StatusInternalServerError {
		s.logger.ErrorContext(c.Context(), "request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(ErrorSchema{Error: err.Error()})
}

func statusCode(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCurrencyNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrFXRatesUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
