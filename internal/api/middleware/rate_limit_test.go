package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
)

func TestPerUserRateLimit(t *testing.T) {
	newServer := func(perMinute int) *echo.Echo {
		e := echo.New()
		withUser := func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if id := c.Request().Header.Get("X-Test-User"); id != "" {
					SetCurrentUser(c, &user.AuthUser{ID: id})
				}
				return next(c)
			}
		}
		e.POST("/functions/v1/generate-event-description", func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}, withUser, PerUserRateLimit(perMinute))
		return e
	}

	call := func(e *echo.Echo, userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/functions/v1/generate-event-description", nil)
		req.Header.Set("X-Test-User", userID)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("上限を超えると429", func(t *testing.T) {
		e := newServer(2)

		assert.Equal(t, http.StatusOK, call(e, "user-1"))
		assert.Equal(t, http.StatusOK, call(e, "user-1"))
		assert.Equal(t, http.StatusTooManyRequests, call(e, "user-1"))
	})

	t.Run("ユーザーごとに独立して数える", func(t *testing.T) {
		e := newServer(1)

		assert.Equal(t, http.StatusOK, call(e, "user-1"))
		assert.Equal(t, http.StatusOK, call(e, "user-2"))
		assert.Equal(t, http.StatusTooManyRequests, call(e, "user-1"))
	})

	t.Run("0以下なら制限しない", func(t *testing.T) {
		e := newServer(0)

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, call(e, "user-1"))
		}
	})
}
