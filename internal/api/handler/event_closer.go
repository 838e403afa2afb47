package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/event"
)

type EventCloserHandler struct {
	service EventCloserServiceInterface
	now     func() time.Time
}

func NewEventCloserHandler(s EventCloserServiceInterface) *EventCloserHandler {
	return &EventCloserHandler{service: s, now: time.Now}
}

type AutoEndEventsResponse struct {
	Success            bool                 `json:"success" example:"true"`
	Message            string               `json:"message" example:"Ended 3 events"`
	EndedCount         int64                `json:"endedCount" example:"2"`
	PlatformEndedCount int64                `json:"platformEndedCount" example:"1"`
	Events             []*event.ClosedEvent `json:"events"`
}

// AutoEnd godoc
// @Summary 終了イベントを自動終了
// @Description 終了時刻を過ぎたイベントを completed、プラットフォームイベントを ended にします
// @Tags events
// @Produce json
// @Success 200 {object} AutoEndEventsResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /functions/v1/auto-end-events [post]
func (h *EventCloserHandler) AutoEnd(c echo.Context) error {
	result, err := h.service.CloseEndedEvents(c.Request().Context(), h.now())
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, AutoEndEventsResponse{
		Success:            true,
		Message:            result.Message(),
		EndedCount:         result.EndedCount,
		PlatformEndedCount: result.PlatformEndedCount,
		Events:             result.Events,
	})
}
