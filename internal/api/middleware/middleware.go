package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

// bodyLimit は関数のJSONボディの上限。Webhookはハンドラー側でさらに絞る
const bodyLimit = "256K"

// corsHeaders はブラウザのSupabaseクライアントと決済プロバイダが送るヘッダー
var corsHeaders = []string{
	"authorization", "x-client-info", "apikey", "content-type", "stripe-signature",
}

// SetupMiddleware は共通ミドルウェアを設定する
func SetupMiddleware(e *echo.Echo) {
	e.Use(RequestIDMiddleware())
	e.Use(RequestLogger())

	// パニックはスタック付きでzapに記録し、500として返す
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("パニックから復帰しました",
				zap.Error(err),
				zap.String("path", c.Request().URL.Path),
				zap.ByteString("stack", stack),
			)
			return err
		},
	}))

	e.Use(middleware.BodyLimit(bodyLimit))

	// ブラウザから直接呼ばれる関数のため全オリジンを許可する
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: corsHeaders,
	}))
}
