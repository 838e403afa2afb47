package user

import "context"

// RoleRepository はロール判定のリポジトリ
type RoleRepository interface {
	// HasRole はユーザーが指定ロールを持つかを返す
	HasRole(ctx context.Context, userID string, role Role) (bool, error)
}
