package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/api/middleware"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
)

type ConnectHandler struct {
	service ConnectServiceInterface
}

func NewConnectHandler(s ConnectServiceInterface) *ConnectHandler {
	return &ConnectHandler{service: s}
}

// CreateAccount godoc
// @Summary 決済アカウントを作成
// @Description 主催者の決済アカウントがなければ作成し、新しいオンボーディングURLを返します
// @Tags payments
// @Produce json
// @Param Authorization header string true "Bearer トークン"
// @Success 200 {object} application.ConnectLink
// @Failure 500 {object} api.ErrorResponse
// @Router /functions/v1/create-stripe-connect-account [post]
func (h *ConnectHandler) CreateAccount(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	link, err := h.service.CreateAccount(c.Request().Context(), caller, c.Request().Header.Get(echo.HeaderOrigin))
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, link)
}

// CheckStatus godoc
// @Summary 決済アカウントの状態を確認
// @Description 決済アカウントの状態を取得し、主催者レコードに反映します
// @Tags payments
// @Produce json
// @Param Authorization header string true "Bearer トークン"
// @Success 200 {object} application.ConnectStatus
// @Failure 500 {object} api.ErrorResponse
// @Router /functions/v1/check-stripe-connect-status [post]
func (h *ConnectHandler) CheckStatus(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	status, err := h.service.CheckStatus(c.Request().Context(), caller)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, status)
}

// callerFrom は RequireUser が載せた呼び出し元を取り出す
func callerFrom(c echo.Context) (*user.AuthUser, error) {
	caller := middleware.CurrentUser(c)
	if caller == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, user.ErrUnauthorized.Error())
	}
	return caller, nil
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}
