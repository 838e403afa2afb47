package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/sale"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/transaction"
)

type saleRow struct {
	ID                      string     `db:"id"`
	UserID                  string     `db:"user_id"`
	EventID                 string     `db:"event_id"`
	TicketTypeID            string     `db:"ticket_type_id"`
	Quantity                int        `db:"quantity"`
	UnitPrice               float64    `db:"unit_price"`
	Subtotal                float64    `db:"subtotal"`
	PlatformFee             float64    `db:"platform_fee"`
	PaymentProcessingFee    float64    `db:"payment_processing_fee"`
	TotalAmount             float64    `db:"total_amount"`
	BuyerName               *string    `db:"buyer_name"`
	BuyerEmail              *string    `db:"buyer_email"`
	BuyerPhone              *string    `db:"buyer_phone"`
	PaymentStatus           string     `db:"payment_status"`
	StripeCheckoutSessionID *string    `db:"stripe_checkout_session_id"`
	StripePaymentIntentID   *string    `db:"stripe_payment_intent_id"`
	PaidAt                  *time.Time `db:"paid_at"`
	CancelledAt             *time.Time `db:"cancelled_at"`
	RefundedAt              *time.Time `db:"refunded_at"`
	CreatedAt               time.Time  `db:"created_at"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *saleRow) toEntity() *sale.TicketSale {
	return &sale.TicketSale{
		ID:                      r.ID,
		UserID:                  r.UserID,
		EventID:                 r.EventID,
		TicketTypeID:            r.TicketTypeID,
		Quantity:                r.Quantity,
		UnitPrice:               r.UnitPrice,
		Subtotal:                r.Subtotal,
		PlatformFee:             r.PlatformFee,
		PaymentProcessingFee:    r.PaymentProcessingFee,
		TotalAmount:             r.TotalAmount,
		BuyerName:               deref(r.BuyerName),
		BuyerEmail:              deref(r.BuyerEmail),
		BuyerPhone:              deref(r.BuyerPhone),
		PaymentStatus:           sale.PaymentStatus(r.PaymentStatus),
		StripeCheckoutSessionID: deref(r.StripeCheckoutSessionID),
		StripePaymentIntentID:   deref(r.StripePaymentIntentID),
		PaidAt:                  r.PaidAt,
		CancelledAt:             r.CancelledAt,
		RefundedAt:              r.RefundedAt,
		CreatedAt:               r.CreatedAt,
	}
}

const saleColumns = `
	id, user_id, event_id, ticket_type_id, quantity, unit_price, subtotal,
	platform_fee, payment_processing_fee, total_amount,
	buyer_name, buyer_email, buyer_phone, payment_status,
	stripe_checkout_session_id, stripe_payment_intent_id,
	paid_at, cancelled_at, refunded_at, created_at`

// SaleRepository はチケット販売リポジトリのPostgreSQL実装
type SaleRepository struct {
	db *sqlx.DB
}

// NewSaleRepository はSaleRepositoryを作成する
func NewSaleRepository(db *sqlx.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Create は販売レコードを作成する
func (r *SaleRepository) Create(ctx context.Context, s *sale.TicketSale) error {
	query := `
		INSERT INTO ticket_sales (
			user_id, event_id, ticket_type_id, quantity, unit_price, subtotal,
			platform_fee, payment_processing_fee, total_amount,
			buyer_name, buyer_email, buyer_phone, payment_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		s.UserID, s.EventID, s.TicketTypeID, s.Quantity, s.UnitPrice, s.Subtotal,
		s.PlatformFee, s.PaymentProcessingFee, s.TotalAmount,
		nullable(s.BuyerName), nullable(s.BuyerEmail), nullable(s.BuyerPhone),
		string(s.PaymentStatus), s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("Failed to create sale record: %w", err)
	}
	return nil
}

// GetByID はIDから販売レコードを取得する
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*sale.TicketSale, error) {
	var row saleRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+saleColumns+` FROM ticket_sales WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sale.ErrSaleNotFound
		}
		return nil, fmt.Errorf("販売レコード取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetBySessionID はチェックアウトセッションIDから販売レコードを取得する
func (r *SaleRepository) GetBySessionID(ctx context.Context, sessionID string) (*sale.TicketSale, error) {
	var row saleRow
	query := `SELECT ` + saleColumns + ` FROM ticket_sales WHERE stripe_checkout_session_id = $1`
	if err := r.db.GetContext(ctx, &row, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sale.ErrSaleNotFound
		}
		return nil, fmt.Errorf("Error fetching sale: %w", err)
	}
	return row.toEntity(), nil
}

// SetCheckoutSession はチェックアウトセッションIDを保存する
func (r *SaleRepository) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ticket_sales SET stripe_checkout_session_id = $1 WHERE id = $2`, sessionID, id)
	if err != nil {
		return fmt.Errorf("セッションIDの保存に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sale.ErrSaleNotFound
	}
	return nil
}

// MarkCompleted は pending か failed の販売を完了にする
// 完了済み・キャンセル・返金済みの行は更新せず ErrSaleNotCompletable を返す
func (r *SaleRepository) MarkCompleted(ctx context.Context, tx transaction.Tx, id, paymentIntentID string, paidAt time.Time) error {
	query := `
		UPDATE ticket_sales
		SET payment_status = 'completed', paid_at = $1, stripe_payment_intent_id = $2
		WHERE id = $3 AND payment_status IN ('pending', 'failed')
	`
	result, err := execer(r.db, tx).ExecContext(ctx, query, paidAt, nullable(paymentIntentID), id)
	if err != nil {
		return fmt.Errorf("Failed to update sale: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sale.ErrSaleNotCompletable
	}
	return nil
}

// MarkCancelled は支払い待ちの販売をキャンセルにする
func (r *SaleRepository) MarkCancelled(ctx context.Context, id string, cancelledAt time.Time) (int64, error) {
	query := `
		UPDATE ticket_sales
		SET payment_status = 'cancelled', cancelled_at = $1
		WHERE id = $2 AND payment_status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, cancelledAt, id)
	if err != nil {
		return 0, fmt.Errorf("販売のキャンセルに失敗: %w", err)
	}
	return result.RowsAffected()
}

// MarkFailedByPaymentIntent は支払いIDに紐づく販売を失敗にする
func (r *SaleRepository) MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ticket_sales SET payment_status = 'failed' WHERE stripe_payment_intent_id = $1`, paymentIntentID)
	if err != nil {
		return 0, fmt.Errorf("支払い失敗の反映に失敗: %w", err)
	}
	return result.RowsAffected()
}

// MarkRefundedByPaymentIntent は支払いIDに紐づく販売を返金済みにする
func (r *SaleRepository) MarkRefundedByPaymentIntent(ctx context.Context, paymentIntentID string, refundedAt time.Time) (int64, error) {
	query := `
		UPDATE ticket_sales
		SET payment_status = 'refunded', refunded_at = $1
		WHERE stripe_payment_intent_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, refundedAt, paymentIntentID)
	if err != nil {
		return 0, fmt.Errorf("返金の反映に失敗: %w", err)
	}
	return result.RowsAffected()
}

type ticketTypeRow struct {
	ID           string  `db:"id"`
	EventID      string  `db:"event_id"`
	EventTitle   string  `db:"event_title"`
	OrganizerID  string  `db:"organizer_id"`
	Name         string  `db:"name"`
	Description  string  `db:"description"`
	Price        float64 `db:"price"`
	QuantitySold int     `db:"quantity_sold"`
	IsActive     bool    `db:"is_active"`
}

type settingsRow struct {
	EventID                        string  `db:"event_id"`
	PlatformFeePercentage          float64 `db:"platform_fee_percentage"`
	PaymentProcessingFeePercentage float64 `db:"payment_processing_fee_percentage"`
	PaymentProcessingFeeFixed      float64 `db:"payment_processing_fee_fixed"`
	FeePayer                       string  `db:"fee_payer"`
}

// TicketRepository はチケット種別・手数料設定のPostgreSQL実装
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository はTicketRepositoryを作成する
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// GetTicketType はチケット種別をイベント情報付きで取得する
func (r *TicketRepository) GetTicketType(ctx context.Context, id string) (*sale.TicketType, error) {
	query := `
		SELECT t.id, t.event_id, e.title AS event_title, e.organizer_id,
			t.name, COALESCE(t.description, '') AS description, t.price,
			COALESCE(t.quantity_sold, 0) AS quantity_sold, t.is_active
		FROM ticket_types t
		JOIN events e ON e.id = t.event_id
		WHERE t.id = $1
	`
	var row ticketTypeRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sale.ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("チケット種別取得に失敗: %w", err)
	}
	return &sale.TicketType{
		ID:           row.ID,
		EventID:      row.EventID,
		EventTitle:   row.EventTitle,
		OrganizerID:  row.OrganizerID,
		Name:         row.Name,
		Description:  row.Description,
		Price:        row.Price,
		QuantitySold: row.QuantitySold,
		IsActive:     row.IsActive,
	}, nil
}

// GetSettings はイベントの手数料設定を取得する
func (r *TicketRepository) GetSettings(ctx context.Context, eventID string) (*sale.Settings, error) {
	query := `
		SELECT event_id, platform_fee_percentage, payment_processing_fee_percentage,
			payment_processing_fee_fixed, fee_payer
		FROM event_ticket_settings
		WHERE event_id = $1
	`
	var row settingsRow
	if err := r.db.GetContext(ctx, &row, query, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sale.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("手数料設定取得に失敗: %w", err)
	}
	return &sale.Settings{
		EventID:                        row.EventID,
		PlatformFeePercentage:          row.PlatformFeePercentage,
		PaymentProcessingFeePercentage: row.PaymentProcessingFeePercentage,
		PaymentProcessingFeeFixed:      row.PaymentProcessingFeeFixed,
		FeePayer:                       sale.FeePayer(row.FeePayer),
	}, nil
}

// IncrementSold は販売済み枚数を加算する
func (r *TicketRepository) IncrementSold(ctx context.Context, tx transaction.Tx, ticketTypeID string, quantity int) error {
	query := `
		UPDATE ticket_types
		SET quantity_sold = COALESCE(quantity_sold, 0) + $1
		WHERE id = $2
	`
	result, err := execer(r.db, tx).ExecContext(ctx, query, quantity, ticketTypeID)
	if err != nil {
		return fmt.Errorf("販売済み枚数の更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sale.ErrTicketTypeNotFound
	}
	return nil
}

var (
	_ sale.Repository       = (*SaleRepository)(nil)
	_ sale.TicketRepository = (*TicketRepository)(nil)
)
