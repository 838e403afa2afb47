package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

const authUserKey = "auth_user"

// TokenVerifier はアクセストークンを検証して呼び出し元を返す
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*user.AuthUser, error)
}

// RequireUser は Authorization: Bearer <token> を検証し、呼び出し元をコンテキストに載せる
// 失敗はすべて500で返す
func RequireUser(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusInternalServerError, user.ErrMissingAuthHeader.Error())
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			u, err := v.Verify(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Authentication error: "+err.Error()).
					SetInternal(err)
			}
			SetCurrentUser(c, u)
			return next(c)
		}
	}
}

// SetCurrentUser は呼び出し元をコンテキストに載せる
func SetCurrentUser(c echo.Context, u *user.AuthUser) {
	c.Set(authUserKey, u)
}

// CurrentUser は RequireUser が載せた呼び出し元を返す
func CurrentUser(c echo.Context) *user.AuthUser {
	u, _ := c.Get(authUserKey).(*user.AuthUser)
	return u
}

// RequireRole は呼び出し元が指定ロールを持たなければ拒否する
// RequireUser の後に置く
func RequireRole(roles user.RoleRepository, role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, user.ErrUnauthorized.Error())
			}

			ok, err := roles.HasRole(c.Request().Context(), u.ID, role)
			if err != nil {
				logger.Error("ロール判定に失敗",
					zap.String("user_id", u.ID),
					zap.String("role", string(role)),
					zap.Error(err),
				)
				return echo.NewHTTPError(http.StatusInternalServerError, user.ErrAdminRoleRequired.Error()).
					SetInternal(err)
			}
			if !ok {
				logger.Warn("ロール不足",
					zap.String("user_id", u.ID),
					zap.String("role", string(role)),
				)
				return echo.NewHTTPError(http.StatusInternalServerError, user.ErrAdminRoleRequired.Error())
			}
			return next(c)
		}
	}
}
