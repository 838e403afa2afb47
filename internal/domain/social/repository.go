package social

import "context"

// FriendshipRepository は友達関係リポジトリのインターフェース
type FriendshipRepository interface {
	// FindBetween は2人のユーザー間の関係を方向を問わず取得する
	FindBetween(ctx context.Context, a, b string) (*Friendship, error)

	// CreateRequest は pending の友達申請を作成する
	CreateRequest(ctx context.Context, userID, friendID string) (*Friendship, error)

	// DeleteBetween は2人のユーザー間の関係を両方向とも削除する
	DeleteBetween(ctx context.Context, a, b string) (int64, error)

	// AcceptRequest は addressee 宛ての requester からの申請1件だけを accepted にする
	AcceptRequest(ctx context.Context, friendshipID, requesterID, addresseeID string) error

	// DeclineRequest は addressee 宛ての requester からの申請1件だけを削除する
	DeclineRequest(ctx context.Context, friendshipID, requesterID, addresseeID string) error
}

// FollowerRepository はフォロー関係リポジトリのインターフェース
type FollowerRepository interface {
	// IsFollowing はユーザーが主催者をフォローしているかを返す
	IsFollowing(ctx context.Context, userID, organizerID string) (bool, error)

	// Follow はフォロー関係を作成する
	Follow(ctx context.Context, userID, organizerID string) error

	// Unfollow はフォロー関係を削除する
	Unfollow(ctx context.Context, userID, organizerID string) error
}

// MessageRepository はメッセージリポジトリのインターフェース
type MessageRepository interface {
	// CountUnread はユーザー宛ての未読メッセージ数を返す
	CountUnread(ctx context.Context, userID string) (int, error)
}
