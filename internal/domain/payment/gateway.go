package payment

import "context"

// CheckoutSession は決済プロバイダのチェックアウトセッション
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string
	Status          string
	PaymentIntentID string
}

// IsPaid は支払い済みとみなせるかを返す
func (s *CheckoutSession) IsPaid() bool {
	return s.PaymentStatus == "paid" || s.Status == "complete"
}

// ReportedStatus はクライアントに返す支払い状態を返す
func (s *CheckoutSession) ReportedStatus() string {
	if s.PaymentStatus != "" {
		return s.PaymentStatus
	}
	return s.Status
}

// Requirements は決済アカウントの未提出項目
type Requirements struct {
	CurrentlyDue   []string `json:"currently_due"`
	EventuallyDue  []string `json:"eventually_due"`
	PastDue        []string `json:"past_due"`
	DisabledReason string   `json:"disabled_reason,omitempty"`
}

// Account は連結された決済アカウント
type Account struct {
	ID               string
	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool
	Requirements     *Requirements
}

// CreateAccountInput は決済アカウント作成の入力
type CreateAccountInput struct {
	Email       string
	OrganizerID string
	UserID      string
}

// CustomerInput は顧客検索・作成の入力
type CustomerInput struct {
	Email  string
	UserID string
}

// CheckoutInput はチェックアウトセッション作成の入力
type CheckoutInput struct {
	CustomerID         string
	ProductName        string
	ProductDescription string
	Amount             int64
	ApplicationFee     int64
	DestinationAccount string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// WebhookEvent は署名検証済みのWebhookイベント
// Object はイベント対象オブジェクトのJSON
type WebhookEvent struct {
	ID     string
	Type   string
	Object []byte
}

// Gateway は決済プロバイダへのアクセスを抽象化する
type Gateway interface {
	// CreateExpressAccount はエクスプレスアカウントを作成し、IDを返す
	CreateExpressAccount(ctx context.Context, in CreateAccountInput) (string, error)

	// CreateOnboardingLink はオンボーディング用URLを発行する
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)

	GetAccount(ctx context.Context, accountID string) (*Account, error)

	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error)

	// FindOrCreateCustomer はメールアドレスで顧客を検索し、なければ作成する
	FindOrCreateCustomer(ctx context.Context, in CustomerInput) (string, error)

	// ConstructWebhookEvent は署名を検証してイベントを復元する
	ConstructWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}
