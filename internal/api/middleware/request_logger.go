package middleware

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

const (
	functionsPrefix    = "/functions/v1/"
	maxRequestIDLength = 64
)

// RequestLogger は1リクエスト1行の構造化ログを出力するミドルウェア
// ステータスはエラーハンドラーが書き込む値で記録する
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			status := responseStatus(c, err)
			fields := []zap.Field{
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			}
			if fn := functionName(req.URL.Path); fn != "" {
				fields = append(fields, zap.String("function", fn))
			}
			if u := CurrentUser(c); u != nil {
				fields = append(fields, zap.String("user_id", u.ID))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			if ce := logger.Get().Check(requestLevel(req.URL.Path, status), "request completed"); ce != nil {
				ce.Write(fields...)
			}
			return err
		}
	}
}

// requestLevel はステータスに応じたログレベルを返す
// ヘルスチェックとスクレイプは成功時はdebugに落とす
func requestLevel(path string, status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	case path == "/health" || path == "/metrics":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// functionName は /functions/v1/<name> の <name> を返す
func functionName(path string) string {
	name, ok := strings.CutPrefix(path, functionsPrefix)
	if !ok {
		return ""
	}
	return strings.Trim(name, "/")
}

// RequestIDMiddleware はリクエストIDを付与するミドルウェア
// クライアントが送ったIDは長さが妥当なときだけ引き継ぐ
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = generateRequestID()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(c)
		}
	}
}

func generateRequestID() string {
	return uuid.NewString()
}
