package handler

import (
	"context"
	"time"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/application"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/description"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
)

// EventCloserServiceInterface は自動終了サービスのインターフェース
type EventCloserServiceInterface interface {
	CloseEndedEvents(ctx context.Context, now time.Time) (*application.CloseResult, error)
}

// ConnectServiceInterface は決済アカウント連携サービスのインターフェース
type ConnectServiceInterface interface {
	CreateAccount(ctx context.Context, caller *user.AuthUser, origin string) (*application.ConnectLink, error)
	CheckStatus(ctx context.Context, caller *user.AuthUser) (*application.ConnectStatus, error)
}

// SaleServiceInterface はチケット販売サービスのインターフェース
type SaleServiceInterface interface {
	VerifyPayment(ctx context.Context, caller *user.AuthUser, sessionID string) (*application.VerifyResult, error)
	CreateCheckout(ctx context.Context, caller *user.AuthUser, in application.CheckoutRequest, origin string) (*application.CheckoutResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// DescriptionServiceInterface は説明文生成サービスのインターフェース
type DescriptionServiceInterface interface {
	Generate(ctx context.Context, req description.Request) (string, error)
}
