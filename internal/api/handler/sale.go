package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/application"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/payment"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/sale"
)

// maxWebhookBody はWebhook本文の上限（64KB）
const maxWebhookBody = 64 << 10

type SaleHandler struct {
	service SaleServiceInterface
}

func NewSaleHandler(s SaleServiceInterface) *SaleHandler {
	return &SaleHandler{service: s}
}

type VerifyPaymentRequest struct {
	SessionID string `json:"sessionId" example:"cs_test_a1b2c3"`
}

type CreateCheckoutRequest struct {
	TicketTypeID string `json:"ticketTypeId" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity     int    `json:"quantity" validate:"required,min=1" example:"2"`
	EventID      string `json:"eventId" validate:"required" example:"550e8400-e29b-41d4-a716-446655440001"`
}

type WebhookResponse struct {
	Received bool `json:"received" example:"true"`
}

// VerifyPayment godoc
// @Summary チケット決済を確認
// @Description チェックアウトセッションの支払い状態を確認し、支払い済みなら販売を完了にします
// @Tags payments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer トークン"
// @Param request body VerifyPaymentRequest true "セッションID"
// @Success 200 {object} application.VerifyResult "未払いでも200（ok=false）"
// @Failure 500 {object} api.ErrorResponse
// @Router /functions/v1/verify-ticket-payment [post]
func (h *SaleHandler) VerifyPayment(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, sale.ErrSessionIDRequired.Error())
	}
	result, err := h.service.VerifyPayment(c.Request().Context(), caller, req.SessionID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateCheckout godoc
// @Summary チケット購入のチェックアウトを作成
// @Description 手数料を計算して保留中の販売を作り、決済ページのURLを返します
// @Tags payments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer トークン"
// @Param request body CreateCheckoutRequest true "購入内容"
// @Success 200 {object} application.CheckoutResult
// @Failure 500 {object} api.ErrorResponse
// @Router /functions/v1/create-ticket-checkout [post]
func (h *SaleHandler) CreateCheckout(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req CreateCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, sale.ErrCheckoutParams.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, sale.ErrCheckoutParams.Error()).SetInternal(err)
	}
	result, err := h.service.CreateCheckout(c.Request().Context(), caller, application.CheckoutRequest{
		TicketTypeID: req.TicketTypeID, Quantity: req.Quantity, EventID: req.EventID,
	}, c.Request().Header.Get(echo.HeaderOrigin))
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Webhook godoc
// @Summary 決済Webhookを受信
// @Description 署名を検証したイベントを販売状態に反映します
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook署名"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} api.ErrorResponse "署名不正"
// @Failure 500 {object} api.ErrorResponse
// @Router /functions/v1/stripe-webhook [post]
func (h *SaleHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return internalError(err)
	}
	err = h.service.HandleWebhook(c.Request().Context(), payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return echo.NewHTTPError(http.StatusBadRequest, payment.ErrInvalidSignature.Error()).SetInternal(err)
		}
		return internalError(err)
	}
	return c.JSON(http.StatusOK, WebhookResponse{Received: true})
}
