package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/description"
)

type DescriptionHandler struct {
	service DescriptionServiceInterface
}

func NewDescriptionHandler(s DescriptionServiceInterface) *DescriptionHandler {
	return &DescriptionHandler{service: s}
}

type GenerateDescriptionResponse struct {
	Success     bool   `json:"success" example:"true"`
	Description string `json:"description" example:"Uma noite inesquecível de rock ao vivo 🎸"`
}

// Generate godoc
// @Summary イベント説明文を生成
// @Description 管理者向け。イベント情報からAIで紹介文を生成します
// @Tags ai
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer トークン"
// @Param request body description.Request true "イベント情報"
// @Success 200 {object} GenerateDescriptionResponse
// @Failure 402 {object} api.ErrorResponse "AIクレジット切れ"
// @Failure 429 {object} api.ErrorResponse "レート制限"
// @Failure 500 {object} api.ErrorResponse
// @Router /functions/v1/generate-event-description [post]
func (h *DescriptionHandler) Generate(c echo.Context) error {
	var req description.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Invalid request body").SetInternal(err)
	}
	text, err := h.service.Generate(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, description.ErrRateLimited):
			return echo.NewHTTPError(http.StatusTooManyRequests, description.ErrRateLimited.Error())
		case errors.Is(err, description.ErrCreditsExhausted):
			return echo.NewHTTPError(http.StatusPaymentRequired, description.ErrCreditsExhausted.Error())
		default:
			return internalError(err)
		}
	}
	return c.JSON(http.StatusOK, GenerateDescriptionResponse{Success: true, Description: text})
}
