package organizer

import (
	"context"
	"time"
)

// Repository は主催者リポジトリのインターフェース
type Repository interface {
	// GetByUserID はユーザーIDから主催者を取得する
	GetByUserID(ctx context.Context, userID string) (*Organizer, error)

	// GetByID はIDから主催者を取得する
	GetByID(ctx context.Context, id string) (*Organizer, error)

	// SetMerchantAccount は作成した決済アカウントIDを保存し、状態を pending にする
	SetMerchantAccount(ctx context.Context, id, accountID string, connectedAt time.Time) error

	// UpdateCapabilities は決済アカウントの機能フラグを反映する
	UpdateCapabilities(ctx context.Context, id string, caps Capabilities) error
}
