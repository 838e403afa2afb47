package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/organizer"
)

type organizerRow struct {
	ID                        string     `db:"id"`
	UserID                    string     `db:"user_id"`
	Name                      string     `db:"name"`
	Email                     string     `db:"email"`
	PageTitle                 string     `db:"page_title"`
	StripeAccountID           *string    `db:"stripe_account_id"`
	StripeAccountStatus       *string    `db:"stripe_account_status"`
	StripeOnboardingCompleted bool       `db:"stripe_onboarding_completed"`
	StripeChargesEnabled      bool       `db:"stripe_charges_enabled"`
	StripePayoutsEnabled      bool       `db:"stripe_payouts_enabled"`
	StripeDetailsSubmitted    bool       `db:"stripe_details_submitted"`
	StripeConnectedAt         *time.Time `db:"stripe_connected_at"`
}

func (r *organizerRow) toEntity() *organizer.Organizer {
	o := &organizer.Organizer{
		ID:                        r.ID,
		UserID:                    r.UserID,
		Name:                      r.Name,
		Email:                     r.Email,
		PageTitle:                 r.PageTitle,
		StripeOnboardingCompleted: r.StripeOnboardingCompleted,
		StripeChargesEnabled:      r.StripeChargesEnabled,
		StripePayoutsEnabled:      r.StripePayoutsEnabled,
		StripeDetailsSubmitted:    r.StripeDetailsSubmitted,
		StripeConnectedAt:         r.StripeConnectedAt,
	}
	if r.StripeAccountID != nil {
		o.StripeAccountID = *r.StripeAccountID
	}
	if r.StripeAccountStatus != nil {
		o.StripeAccountStatus = organizer.AccountStatus(*r.StripeAccountStatus)
	}
	return o
}

const organizerColumns = `
	id, user_id,
	COALESCE(name, '') AS name,
	COALESCE(email, '') AS email,
	COALESCE(page_title, '') AS page_title,
	stripe_account_id, stripe_account_status,
	COALESCE(stripe_onboarding_completed, false) AS stripe_onboarding_completed,
	COALESCE(stripe_charges_enabled, false) AS stripe_charges_enabled,
	COALESCE(stripe_payouts_enabled, false) AS stripe_payouts_enabled,
	COALESCE(stripe_details_submitted, false) AS stripe_details_submitted,
	stripe_connected_at`

// OrganizerRepository は主催者リポジトリのPostgreSQL実装
type OrganizerRepository struct {
	db *sqlx.DB
}

// NewOrganizerRepository はOrganizerRepositoryを作成する
func NewOrganizerRepository(db *sqlx.DB) *OrganizerRepository {
	return &OrganizerRepository{db: db}
}

// GetByUserID はユーザーIDから主催者を取得する
func (r *OrganizerRepository) GetByUserID(ctx context.Context, userID string) (*organizer.Organizer, error) {
	return r.get(ctx, `SELECT `+organizerColumns+` FROM organizers WHERE user_id = $1`, userID)
}

// GetByID はIDから主催者を取得する
func (r *OrganizerRepository) GetByID(ctx context.Context, id string) (*organizer.Organizer, error) {
	return r.get(ctx, `SELECT `+organizerColumns+` FROM organizers WHERE id = $1`, id)
}

func (r *OrganizerRepository) get(ctx context.Context, query, arg string) (*organizer.Organizer, error) {
	var row organizerRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, organizer.ErrOrganizerNotFound
		}
		return nil, fmt.Errorf("主催者取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// SetMerchantAccount は作成した決済アカウントIDを保存する
func (r *OrganizerRepository) SetMerchantAccount(ctx context.Context, id, accountID string, connectedAt time.Time) error {
	query := `
		UPDATE organizers
		SET stripe_account_id = $1, stripe_account_status = $2, stripe_connected_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, accountID, string(organizer.AccountStatusPending), connectedAt, id)
	if err != nil {
		return fmt.Errorf("決済アカウントIDの保存に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return organizer.ErrOrganizerNotFound
	}
	return nil
}

// UpdateCapabilities は決済アカウントの機能フラグを反映する
func (r *OrganizerRepository) UpdateCapabilities(ctx context.Context, id string, caps organizer.Capabilities) error {
	query := `
		UPDATE organizers
		SET stripe_account_status = $1,
			stripe_onboarding_completed = $2,
			stripe_charges_enabled = $3,
			stripe_payouts_enabled = $4,
			stripe_details_submitted = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		string(caps.Status()),
		caps.OnboardingComplete(),
		caps.ChargesEnabled,
		caps.PayoutsEnabled,
		caps.DetailsSubmitted,
		id,
	)
	if err != nil {
		return fmt.Errorf("決済アカウント状態の更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return organizer.ErrOrganizerNotFound
	}
	return nil
}

var _ organizer.Repository = (*OrganizerRepository)(nil)
