package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/organizer"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/payment"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

const connectLockTTL = 30 * time.Second

// ConnectLink はオンボーディングURLと決済アカウントID
type ConnectLink struct {
	URL       string `json:"url"`
	AccountID string `json:"accountId"`
}

// ConnectStatus は決済アカウントの状態
type ConnectStatus struct {
	Connected          bool                  `json:"connected"`
	AccountID          string                `json:"account_id,omitempty"`
	OnboardingComplete bool                  `json:"onboarding_complete"`
	ChargesEnabled     bool                  `json:"charges_enabled"`
	PayoutsEnabled     bool                  `json:"payouts_enabled"`
	Requirements       *payment.Requirements `json:"requirements,omitempty"`
}

// ConnectService は主催者の決済アカウント連携を扱う
type ConnectService struct {
	organizerRepo organizer.Repository
	gateway       payment.Gateway
	locker        Locker
	now           func() time.Time
}

func NewConnectService(or organizer.Repository, gw payment.Gateway, locker Locker) *ConnectService {
	return &ConnectService{organizerRepo: or, gateway: gw, locker: locker, now: time.Now}
}

// CreateAccount は決済アカウントがなければ作成し、新しいオンボーディングURLを返す
// アカウントは主催者ごとに1つだけ作られる
func (s *ConnectService) CreateAccount(ctx context.Context, caller *user.AuthUser, origin string) (*ConnectLink, error) {
	log := logger.Step("CREATE-STRIPE-CONNECT-ACCOUNT")
	if caller.Email == "" {
		return nil, user.ErrEmailNotAvailable
	}
	log.Info("User authenticated", zap.String("userId", caller.ID))

	org, err := s.organizerRepo.GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	log.Info("Organizer found", zap.String("organizerId", org.ID))

	var accountID string
	ensure := func(ctx context.Context) error {
		id, err := s.ensureAccount(ctx, log, caller, org.ID)
		accountID = id
		return err
	}
	if s.locker != nil {
		err = s.locker.WithLock(ctx, "stripe-connect:"+org.ID, connectLockTTL, ensure)
	} else {
		err = ensure(ctx)
	}
	if err != nil {
		return nil, err
	}

	url, err := s.gateway.CreateOnboardingLink(ctx, accountID,
		origin+"/organizer-profile?stripe_refresh=true",
		origin+"/organizer-profile?stripe_success=true",
	)
	if err != nil {
		return nil, err
	}
	log.Info("Account link created", zap.String("url", url))

	return &ConnectLink{URL: url, AccountID: accountID}, nil
}

// ensureAccount はロック内で主催者を読み直し、未作成なら決済アカウントを作成する
func (s *ConnectService) ensureAccount(ctx context.Context, log *zap.Logger, caller *user.AuthUser, organizerID string) (string, error) {
	org, err := s.organizerRepo.GetByID(ctx, organizerID)
	if err != nil {
		return "", err
	}
	if org.HasMerchantAccount() {
		log.Info("Using existing Stripe account", zap.String("accountId", org.StripeAccountID))
		return org.StripeAccountID, nil
	}

	email := org.Email
	if email == "" {
		email = caller.Email
	}
	accountID, err := s.gateway.CreateExpressAccount(ctx, payment.CreateAccountInput{
		Email:       email,
		OrganizerID: org.ID,
		UserID:      caller.ID,
	})
	if err != nil {
		return "", err
	}
	log.Info("Stripe account created", zap.String("accountId", accountID))

	// 保存失敗はリンク発行を妨げない
	if err := s.organizerRepo.SetMerchantAccount(ctx, org.ID, accountID, s.now()); err != nil {
		log.Error("Error updating organizer with account ID", zap.Error(err))
	}
	return accountID, nil
}

// CheckStatus は決済アカウントの状態を取得し、主催者レコードに反映する
func (s *ConnectService) CheckStatus(ctx context.Context, caller *user.AuthUser) (*ConnectStatus, error) {
	log := logger.Step("CHECK-STRIPE-CONNECT-STATUS")

	org, err := s.organizerRepo.GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if !org.HasMerchantAccount() {
		log.Info("No Stripe account connected", zap.String("organizerId", org.ID))
		return &ConnectStatus{}, nil
	}

	acct, err := s.gateway.GetAccount(ctx, org.StripeAccountID)
	if err != nil {
		return nil, err
	}
	caps := organizer.Capabilities{
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}
	log.Info("Account retrieved",
		zap.Bool("charges_enabled", caps.ChargesEnabled),
		zap.Bool("payouts_enabled", caps.PayoutsEnabled),
		zap.Bool("details_submitted", caps.DetailsSubmitted),
	)

	if err := s.organizerRepo.UpdateCapabilities(ctx, org.ID, caps); err != nil {
		log.Error("Error updating organizer", zap.Error(err))
	}

	return &ConnectStatus{
		Connected:          true,
		AccountID:          acct.ID,
		OnboardingComplete: caps.OnboardingComplete(),
		ChargesEnabled:     caps.ChargesEnabled,
		PayoutsEnabled:     caps.PayoutsEnabled,
		Requirements:       acct.Requirements,
	}, nil
}
