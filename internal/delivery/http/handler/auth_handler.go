package handler

import (
	"errors"
	"time"

	"datajobs/internal/delivery/http/middleware"
	"datajobs/internal/pkg/response"
	"datajobs/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc        *usecase.AuthUsecase
	expiresIn time.Duration
}

type tokenRequest struct {
	Source string `json:"source"`
	APIKey string `json:"api_key"`
}

func NewAuthHandler(uc *usecase.AuthUsecase, expiresIn time.Duration) *AuthHandler {
	return &AuthHandler{uc: uc, expiresIn: expiresIn}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/token", h.Token)
}

func (h *AuthHandler) Token(c fiber.Ctx) error {
	var req tokenRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if req.Source == "" || req.APIKey == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "source and api_key are required", nil, nil)
	}

	token, err := h.uc.IssueToken(c.Context(), req.Source, req.APIKey)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid source credentials", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	data := map[string]any{
		"access_token": token,
		"expires_in":   int(h.expiresIn.Seconds()),
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
