package organizer

import "time"

// AccountStatus は決済アカウントの大まかな状態
type AccountStatus string

const (
	AccountStatusPending AccountStatus = "pending"
	AccountStatusActive  AccountStatus = "active"
)

// Organizer はチケット収益を受け取る主催者
type Organizer struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	PageTitle string

	StripeAccountID           string
	StripeAccountStatus       AccountStatus
	StripeOnboardingCompleted bool
	StripeChargesEnabled      bool
	StripePayoutsEnabled      bool
	StripeDetailsSubmitted    bool
	StripeConnectedAt         *time.Time
}

// HasMerchantAccount は決済アカウントが作成済みかを返す
func (o *Organizer) HasMerchantAccount() bool {
	return o.StripeAccountID != ""
}

// Capabilities は決済アカウントの機能フラグ
type Capabilities struct {
	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool
}

// Status は機能フラグから状態を導出する（入金・出金の両方が有効なら active）
func (c Capabilities) Status() AccountStatus {
	if c.ChargesEnabled && c.PayoutsEnabled {
		return AccountStatusActive
	}
	return AccountStatusPending
}

// OnboardingComplete はオンボーディングが完了しているかを返す（必要情報の提出済み）
func (c Capabilities) OnboardingComplete() bool {
	return c.DetailsSubmitted
}
