package organizer

import "errors"

// Organizer ドメインのエラー定義
// メッセージはそのままAPIレスポンスに載る
var (
	ErrOrganizerNotFound = errors.New("Organizer not found")
)
