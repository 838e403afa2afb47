package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/api/handler"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/application"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/description"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/event"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/metrics"
)

type stubCloser struct{}

func (stubCloser) CloseEndedEvents(ctx context.Context, now time.Time) (*application.CloseResult, error) {
	return &application.CloseResult{Events: []*event.ClosedEvent{}}, nil
}

type stubConnect struct{}

func (stubConnect) CreateAccount(ctx context.Context, caller *user.AuthUser, origin string) (*application.ConnectLink, error) {
	return &application.ConnectLink{URL: origin + "/onboarding", AccountID: "acct_" + caller.ID}, nil
}

func (stubConnect) CheckStatus(ctx context.Context, caller *user.AuthUser) (*application.ConnectStatus, error) {
	return &application.ConnectStatus{}, nil
}

type stubSales struct{}

func (stubSales) VerifyPayment(ctx context.Context, caller *user.AuthUser, sessionID string) (*application.VerifyResult, error) {
	return &application.VerifyResult{OK: true, PaymentStatus: "completed"}, nil
}

func (stubSales) CreateCheckout(ctx context.Context, caller *user.AuthUser, in application.CheckoutRequest, origin string) (*application.CheckoutResult, error) {
	return &application.CheckoutResult{URL: "https://checkout", SessionID: "cs_1"}, nil
}

func (stubSales) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return nil
}

type countingDescriptions struct{ calls int }

func (d *countingDescriptions) Generate(ctx context.Context, req description.Request) (string, error) {
	d.calls++
	return "Descrição", nil
}

// tokenVerifier はトークンをそのままユーザーIDとして扱う
type tokenVerifier struct{}

func (tokenVerifier) Verify(ctx context.Context, token string) (*user.AuthUser, error) {
	return &user.AuthUser{ID: token, Email: token + "@example.com"}, nil
}

// adminRoles は admin-1 だけを管理者とする
type adminRoles struct{}

func (adminRoles) HasRole(ctx context.Context, userID string, role user.Role) (bool, error) {
	return userID == "admin-1" && role == user.RoleAdmin, nil
}

func newTestServer(t *testing.T) (*echo.Echo, *countingDescriptions) {
	t.Helper()
	reg := prometheus.NewRegistry()
	descriptions := &countingDescriptions{}
	e := New(Deps{
		Health:          handler.NewHealthHandler(),
		EventCloser:     handler.NewEventCloserHandler(stubCloser{}),
		Connect:         handler.NewConnectHandler(stubConnect{}),
		Sale:            handler.NewSaleHandler(stubSales{}),
		Description:     handler.NewDescriptionHandler(descriptions),
		Verifier:        tokenVerifier{},
		Roles:           adminRoles{},
		Metrics:         metrics.NewWithRegistry(reg),
		Gatherer:        reg,
		AIRatePerMinute: 10,
	})
	return e, descriptions
}

func post(e *echo.Echo, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_Routes(t *testing.T) {
	e, descriptions := newTestServer(t)

	t.Run("自動終了は認証なしで呼べる", func(t *testing.T) {
		rec := post(e, "/functions/v1/auto-end-events", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)
	})

	t.Run("認証が必要な関数はヘッダーなしで500", func(t *testing.T) {
		for _, path := range []string{
			"/functions/v1/create-stripe-connect-account",
			"/functions/v1/check-stripe-connect-status",
			"/functions/v1/verify-ticket-payment",
			"/functions/v1/create-ticket-checkout",
			"/functions/v1/generate-event-description",
		} {
			rec := post(e, path, "", `{}`)

			assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
			assert.JSONEq(t, `{"success":false,"error":"No authorization header provided"}`, rec.Body.String(), path)
		}
	})

	t.Run("認証済みなら呼び出し元がサービスに渡る", func(t *testing.T) {
		rec := post(e, "/functions/v1/verify-ticket-payment", "user-1", `{"sessionId":"cs_1"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true,"payment_status":"completed"}`, rec.Body.String())
	})

	t.Run("管理者以外は説明文生成を呼べない", func(t *testing.T) {
		rec := post(e, "/functions/v1/generate-event-description", "user-1", `{"title":"Show"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unauthorized: Admin role required")
		assert.Zero(t, descriptions.calls)
	})

	t.Run("管理者は説明文を生成できる", func(t *testing.T) {
		rec := post(e, "/functions/v1/generate-event-description", "admin-1", `{"title":"Show"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"description":"Descrição"}`, rec.Body.String())
		assert.Equal(t, 1, descriptions.calls)
	})

	t.Run("Webhookは認証なしで受け付ける", func(t *testing.T) {
		rec := post(e, "/functions/v1/stripe-webhook", "", `{"id":"evt_1"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	})

	t.Run("プリフライトは認証なしで204", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/functions/v1/verify-ticket-payment", nil)
		req.Header.Set(echo.HeaderOrigin, "https://meetlines.app")
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})

	t.Run("メトリクスが公開される", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http_requests_total")
	})
}
