package handlers

import (
	"time"

	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// HealthHandler reports service and store health.
type HealthHandler struct {
	service *services.ProductService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(service *services.ProductService) *HealthHandler {
	return &HealthHandler{service: service}
}

// RegisterRoutes mounts GET /health on router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 503 when the store cannot be reached.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status, database, code := "healthy", "up", fiber.StatusOK
	if err := h.service.Ping(c.UserContext()); err != nil {
		log.Warn().Err(err).Msg("Health check failed")
		status, database, code = "unhealthy", "down", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	})
}
