package profile

import "context"

// Repository はプロフィールリポジトリのインターフェース
type Repository interface {
	// GetByUserID はユーザーIDからプロフィールを取得する
	GetByUserID(ctx context.Context, userID string) (*Profile, error)

	// Update はプロフィールを部分更新し、更新後の行を返す
	Update(ctx context.Context, userID string, update Update) (*Profile, error)
}
