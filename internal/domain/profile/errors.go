package profile

import "errors"

// Profile ドメインのエラー定義
var (
	ErrProfileNotFound = errors.New("プロフィールが見つかりません")
	ErrEmptyUpdate     = errors.New("更新する項目がありません")
)
