package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/api/middleware"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/application"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/description"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
)

// MockEventCloserService はEventCloserServiceInterfaceのモック
type MockEventCloserService struct {
	mock.Mock
}

func (m *MockEventCloserService) CloseEndedEvents(ctx context.Context, now time.Time) (*application.CloseResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CloseResult), args.Error(1)
}

// MockConnectService はConnectServiceInterfaceのモック
type MockConnectService struct {
	mock.Mock
}

func (m *MockConnectService) CreateAccount(ctx context.Context, caller *user.AuthUser, origin string) (*application.ConnectLink, error) {
	args := m.Called(ctx, caller, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.ConnectLink), args.Error(1)
}

func (m *MockConnectService) CheckStatus(ctx context.Context, caller *user.AuthUser) (*application.ConnectStatus, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.ConnectStatus), args.Error(1)
}

// MockSaleService はSaleServiceInterfaceのモック
type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) VerifyPayment(ctx context.Context, caller *user.AuthUser, sessionID string) (*application.VerifyResult, error) {
	args := m.Called(ctx, caller, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.VerifyResult), args.Error(1)
}

func (m *MockSaleService) CreateCheckout(ctx context.Context, caller *user.AuthUser, in application.CheckoutRequest, origin string) (*application.CheckoutResult, error) {
	args := m.Called(ctx, caller, in, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CheckoutResult), args.Error(1)
}

func (m *MockSaleService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

// MockDescriptionService はDescriptionServiceInterfaceのモック
type MockDescriptionService struct {
	mock.Mock
}

func (m *MockDescriptionService) Generate(ctx context.Context, req description.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

var buyer = &user.AuthUser{ID: "user-1", Email: "ana@example.com"}

const testOrigin = "https://meetlines.app"

// callHandler はハンドラーを実行し、エラーはアプリのエラーハンドラーでレスポンスにする
func callHandler(h echo.HandlerFunc, body string, who *user.AuthUser, headers map[string]string) *httptest.ResponseRecorder {
	e := NewTestEcho()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/test", reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if who != nil {
		middleware.SetCurrentUser(c, who)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}
