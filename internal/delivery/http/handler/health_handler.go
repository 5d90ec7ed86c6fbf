package handler

import (
	"datajobs/internal/database"
	"datajobs/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	db database.DB
}

func NewHealthHandler(db database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "database unreachable", nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]string{"status": "healthy"})
}
