package payment

import "errors"

// 決済連携のエラー定義
// メッセージはそのままAPIレスポンスに載る
var (
	ErrSecretKeyNotSet            = errors.New("STRIPE_SECRET_KEY is not set")
	ErrSecretKeyNotConfigured     = errors.New("STRIPE_SECRET_KEY is not configured")
	ErrWebhookSecretNotConfigured = errors.New("STRIPE_WEBHOOK_SECRET is not configured")
	ErrMissingSignature           = errors.New("Missing stripe-signature header")
	ErrInvalidSignature           = errors.New("Invalid signature")
)
