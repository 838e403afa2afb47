// Package server はHTTPサーバーの組み立てを行う
package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/api"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/api/handler"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/api/middleware"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/config"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/metrics"
)

// Deps はルーティングに必要な依存
type Deps struct {
	Health      *handler.HealthHandler
	EventCloser *handler.EventCloserHandler
	Connect     *handler.ConnectHandler
	Sale        *handler.SaleHandler
	Description *handler.DescriptionHandler

	Verifier middleware.TokenVerifier
	Roles    user.RoleRepository

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// MetricsAuth は /metrics の Basic 認証設定
	MetricsAuth config.MetricsConfig
	// AIRatePerMinute はユーザーごとの説明文生成回数の上限
	AIRatePerMinute int
}

// New はミドルウェアとルートを設定したEchoを返す
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e)
	if d.Metrics != nil {
		e.Use(middleware.PrometheusMiddleware(d.Metrics))
	}

	e.GET("/health", d.Health.Check)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})),
			middleware.MetricsBasicAuth(d.MetricsAuth))
	}

	fn := e.Group("/functions/v1")

	// 定期実行から呼ばれるため認証なし
	fn.POST("/auto-end-events", d.EventCloser.AutoEnd)
	// 決済サービスからの呼び出しは署名で検証する
	fn.POST("/stripe-webhook", d.Sale.Webhook)

	authed := []echo.MiddlewareFunc{middleware.RequireUser(d.Verifier)}
	fn.POST("/create-stripe-connect-account", d.Connect.CreateAccount, authed...)
	fn.POST("/check-stripe-connect-status", d.Connect.CheckStatus, authed...)
	fn.POST("/verify-ticket-payment", d.Sale.VerifyPayment, authed...)
	fn.POST("/create-ticket-checkout", d.Sale.CreateCheckout, authed...)

	// 管理者専用の関数はすべてここに登録する
	admin := append(authed, middleware.RequireRole(d.Roles, user.RoleAdmin))
	fn.POST("/generate-event-description", d.Description.Generate,
		append(admin, middleware.PerUserRateLimit(d.AIRatePerMinute))...)

	return e
}
