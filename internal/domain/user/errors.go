package user

import "errors"

// 認証・認可のエラー定義
// メッセージはそのままAPIレスポンスに載る
var (
	ErrMissingAuthHeader = errors.New("No authorization header provided")
	ErrEmailNotAvailable = errors.New("User not authenticated or email not available")
	ErrUnauthorized      = errors.New("Unauthorized")
	ErrAdminRoleRequired = errors.New("Unauthorized: Admin role required")
)
