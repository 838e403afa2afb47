package social

import "errors"

// Social ドメインのエラー定義
var (
	ErrFriendshipNotFound    = errors.New("友達関係が見つかりません")
	ErrFriendshipExists      = errors.New("友達関係は既に存在します")
	ErrFriendRequestNotFound = errors.New("対象の友達申請が見つかりません")
	ErrCannotFriendYourself  = errors.New("自分自身には友達申請できません")
	ErrAlreadyFollowing      = errors.New("既にフォローしています")
)
