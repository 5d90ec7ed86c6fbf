package handler

import (
	"strconv"

	"datajobs/internal/delivery/http/middleware"
	"datajobs/internal/pkg/response"
	"datajobs/internal/repository"

	"github.com/gofiber/fiber/v3"
)

type QuarantineHandler struct {
	repo repository.QuarantineRepository
}

func NewQuarantineHandler(repo repository.QuarantineRepository) *QuarantineHandler {
	return &QuarantineHandler{repo: repo}
}

func (h *QuarantineHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/quarantine", h.List)
}

func (h *QuarantineHandler) List(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 20)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "limit must be an integer", nil, err)
	}
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "offset must be an integer", nil, err)
	}

	items, err := h.repo.List(c.Context(), limit, offset)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	total, err := h.repo.Count(c.Context())
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	data := map[string]any{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}
