package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/config"
	"github.com/geocoding-gateway/internal/delivery/http/handler"
	"github.com/geocoding-gateway/internal/delivery/http/middleware"
	apperrors "github.com/geocoding-gateway/internal/pkg/errors"
	"github.com/geocoding-gateway/internal/pkg/metrics"
	"github.com/geocoding-gateway/internal/pkg/utils"
)

// Server composes the geocoding routes over Fiber.
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	geocodeHandler *handler.GeocodeHandler
	statusHandler  *handler.StatusHandler
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	provider *metrics.Provider,
	geocodeHandler *handler.GeocodeHandler,
	statusHandler *handler.StatusHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Bragi Geocoding Gateway",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: errorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		geocodeHandler: geocodeHandler,
		statusHandler:  statusHandler,
	}

	s.setupMiddlewares(provider)
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares(provider *metrics.Provider) {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.RequestIDMiddleware())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	if provider != nil {
		s.app.Use(middleware.Metrics(provider))
	}
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")

	// Liveness, separate from the backend status probe
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Registration order fixed: forward, reverse, status. The paths
	// are disjoint but a deterministic order keeps dispatch diagnosable.
	api.Get("/autocomplete", s.geocodeHandler.Forward)
	api.Get("/autocomplete/explain", s.geocodeHandler.ForwardExplain)
	api.Get("/reverse", s.geocodeHandler.Reverse)
	api.Get("/status", s.statusHandler.Status)

	// Everything unmatched gets the structured 404 instead of Fiber's
	// plain-text default.
	s.app.Use(func(c *fiber.Ctx) error {
		return apperrors.ErrRouteNotFound
	})
}

// App exposes the composed application, used by tests to drive requests
// without a listener.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler is the single recovery stage: every failure that escapes
// a handler, including panics surfaced by the recover middleware and
// Fiber's own routing errors, becomes a structured JSON response. It
// must never fail itself.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logger.Error("HTTP Error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		if appErr, ok := err.(*apperrors.AppError); ok {
			return utils.SendError(c, appErr)
		}

		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(utils.ErrorResponse{
				Error: apperrors.New("HTTP_ERROR", e.Message, e.Code),
			})
		}

		return utils.SendError(c, err)
	}
}
