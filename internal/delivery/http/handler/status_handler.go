package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/usecase"
)

// StatusHandler serves the backend status endpoint.
type StatusHandler struct {
	statusUC *usecase.StatusUseCase
	logger   *zap.Logger
}

func NewStatusHandler(statusUC *usecase.StatusUseCase, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		statusUC: statusUC,
		logger:   logger,
	}
}

// Status handles GET /api/v1/status. It always answers 200, backend
// trouble shows up in the envelope instead.
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.statusUC.Status(c.Context()))
}
