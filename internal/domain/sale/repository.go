package sale

import (
	"context"
	"time"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/transaction"
)

// Repository はチケット販売リポジトリのインターフェース
type Repository interface {
	// Create は販売レコードを作成し、IDを設定する
	Create(ctx context.Context, sale *TicketSale) error

	// GetByID はIDから販売レコードを取得する
	GetByID(ctx context.Context, id string) (*TicketSale, error)

	// GetBySessionID はチェックアウトセッションIDから販売レコードを取得する
	GetBySessionID(ctx context.Context, sessionID string) (*TicketSale, error)

	// SetCheckoutSession はチェックアウトセッションIDを保存する
	SetCheckoutSession(ctx context.Context, id, sessionID string) error

	// MarkCompleted は pending か failed の販売を完了にする（トランザクション任意）
	// それ以外の状態なら ErrSaleNotCompletable を返す
	MarkCompleted(ctx context.Context, tx transaction.Tx, id, paymentIntentID string, paidAt time.Time) error

	// MarkCancelled は支払い待ちの販売をキャンセルにする
	MarkCancelled(ctx context.Context, id string, cancelledAt time.Time) (int64, error)

	// MarkFailedByPaymentIntent は支払いIDに紐づく販売を失敗にする
	MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error)

	// MarkRefundedByPaymentIntent は支払いIDに紐づく販売を返金済みにする
	MarkRefundedByPaymentIntent(ctx context.Context, paymentIntentID string, refundedAt time.Time) (int64, error)
}

// TicketRepository はチケット種別と手数料設定のリポジトリ
type TicketRepository interface {
	// GetTicketType はチケット種別をイベント情報付きで取得する
	GetTicketType(ctx context.Context, id string) (*TicketType, error)

	// GetSettings はイベントの手数料設定を取得する
	GetSettings(ctx context.Context, eventID string) (*Settings, error)

	// IncrementSold は販売済み枚数を加算する（トランザクション必須）
	IncrementSold(ctx context.Context, tx transaction.Tx, ticketTypeID string, quantity int) error
}
