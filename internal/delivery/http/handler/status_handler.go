package handler

import (
	"datajobs/internal/delivery/http/middleware"
	"datajobs/internal/pkg/response"
	"datajobs/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type StatusHandler struct {
	uc *usecase.StatusUsecase
}

func NewStatusHandler(uc *usecase.StatusUsecase) *StatusHandler {
	return &StatusHandler{uc: uc}
}

func (h *StatusHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/status", h.Status)
}

func (h *StatusHandler) Status(c fiber.Ctx) error {
	summary, err := h.uc.Summary(c.Context())
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, summary)
}
