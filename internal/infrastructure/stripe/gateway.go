package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/payment"
)

const currencyBRL = "brl"

// Gateway はStripe APIを使った payment.Gateway の実装
// キー未設定でも生成でき、呼び出し時にエラーを返す
type Gateway struct {
	api           *client.API
	secretKey     string
	webhookSecret string
}

// Option はGatewayの設定を変更する
type Option func(*gatewayOptions)

type gatewayOptions struct {
	backends *stripe.Backends
}

// WithBackends はAPIの接続先を差し替える
func WithBackends(b *stripe.Backends) Option {
	return func(o *gatewayOptions) { o.backends = b }
}

// NewGateway は新しいGatewayを作成する
func NewGateway(secretKey, webhookSecret string, opts ...Option) *Gateway {
	var o gatewayOptions
	for _, opt := range opts {
		opt(&o)
	}
	g := &Gateway{secretKey: secretKey, webhookSecret: webhookSecret}
	if secretKey != "" {
		g.api = client.New(secretKey, o.backends)
	}
	return g
}

func (g *Gateway) ready() error {
	if g.api == nil {
		return payment.ErrSecretKeyNotSet
	}
	return nil
}

// CreateExpressAccount はブラジルの個人向けエクスプレスアカウントを作成する
func (g *Gateway) CreateExpressAccount(ctx context.Context, in payment.CreateAccountInput) (string, error) {
	if err := g.ready(); err != nil {
		return "", err
	}
	params := &stripe.AccountParams{
		Type:         stripe.String(string(stripe.AccountTypeExpress)),
		Country:      stripe.String("BR"),
		Email:        stripe.String(in.Email),
		BusinessType: stripe.String(string(stripe.AccountBusinessTypeIndividual)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	params.AddMetadata("organizer_id", in.OrganizerID)
	params.AddMetadata("user_id", in.UserID)

	acct, err := g.api.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("決済アカウント作成に失敗: %w", err)
	}
	return acct.ID, nil
}

// CreateOnboardingLink はオンボーディング用のアカウントリンクを発行する
func (g *Gateway) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	if err := g.ready(); err != nil {
		return "", err
	}
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx

	link, err := g.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("オンボーディングリンク作成に失敗: %w", err)
	}
	return link.URL, nil
}

// GetAccount は決済アカウントを取得する
func (g *Gateway) GetAccount(ctx context.Context, accountID string) (*payment.Account, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := g.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return nil, fmt.Errorf("決済アカウント取得に失敗: %w", err)
	}

	out := &payment.Account{
		ID:               acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}
	if r := acct.Requirements; r != nil {
		out.Requirements = &payment.Requirements{
			CurrentlyDue:   r.CurrentlyDue,
			EventuallyDue:  r.EventuallyDue,
			PastDue:        r.PastDue,
			DisabledReason: string(r.DisabledReason),
		}
	}
	return out, nil
}

// GetCheckoutSession はチェックアウトセッションを取得する
func (g *Gateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("チェックアウトセッション取得に失敗: %w", err)
	}
	return toCheckoutSession(s), nil
}

// CreateCheckoutSession は主催者アカウントへの送金付きチェックアウトセッションを作成する
// 明細は合計額1行にまとめる
func (g *Gateway) CreateCheckoutSession(ctx context.Context, in payment.CheckoutInput) (*payment.CheckoutSession, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(in.ProductName),
	}
	if in.ProductDescription != "" {
		product.Description = stripe.String(in.ProductDescription)
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(in.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(currencyBRL),
					ProductData: product,
					UnitAmount:  stripe.Int64(in.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(in.ApplicationFee),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(in.DestinationAccount),
			},
		},
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("チェックアウトセッション作成に失敗: %w", err)
	}
	return toCheckoutSession(s), nil
}

// FindOrCreateCustomer はメールアドレスで顧客を検索し、なければ作成する
func (g *Gateway) FindOrCreateCustomer(ctx context.Context, in payment.CustomerInput) (string, error) {
	if err := g.ready(); err != nil {
		return "", err
	}
	listParams := &stripe.CustomerListParams{Email: stripe.String(in.Email)}
	listParams.Limit = stripe.Int64(1)
	listParams.Context = ctx

	it := g.api.Customers.List(listParams)
	if it.Next() {
		return it.Customer().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", fmt.Errorf("顧客検索に失敗: %w", err)
	}

	params := &stripe.CustomerParams{Email: stripe.String(in.Email)}
	params.Context = ctx
	params.AddMetadata("supabase_user_id", in.UserID)

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("顧客作成に失敗: %w", err)
	}
	return c.ID, nil
}

// ConstructWebhookEvent は署名を検証してイベントを復元する
// APIバージョンの不一致は許容する
func (g *Gateway) ConstructWebhookEvent(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if g.secretKey == "" {
		return nil, payment.ErrSecretKeyNotConfigured
	}
	if g.webhookSecret == "" {
		return nil, payment.ErrWebhookSecretNotConfigured
	}
	if signature == "" {
		return nil, payment.ErrMissingSignature
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, errors.Join(payment.ErrInvalidSignature, err)
	}

	out := &payment.WebhookEvent{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data != nil {
		out.Object = ev.Data.Raw
	}
	return out, nil
}

func toCheckoutSession(s *stripe.CheckoutSession) *payment.CheckoutSession {
	out := &payment.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		Status:        string(s.Status),
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}

var _ payment.Gateway = (*Gateway)(nil)
