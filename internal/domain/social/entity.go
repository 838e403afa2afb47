package social

import "time"

// FriendshipStatus は友達関係の状態
// none → pending（申請）、pending/accepted → none（解除）
// accepted への遷移は申請を受けた側の承認でのみ起こる
type FriendshipStatus string

const (
	FriendshipNone     FriendshipStatus = "none"
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship は友達関係（申請者 UserID → 相手 FriendID）
type Friendship struct {
	ID        string
	UserID    string
	FriendID  string
	Status    FriendshipStatus
	CreatedAt time.Time
}

// Involves は関係が2人のユーザー間のものかを方向を問わず返す
func (f *Friendship) Involves(a, b string) bool {
	return (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a)
}

// CanRequest は現在の状態から友達申請できるかを返す
func (s FriendshipStatus) CanRequest() bool {
	return s == FriendshipNone || s == ""
}

// CanRemove は現在の状態から解除できるかを返す
func (s FriendshipStatus) CanRemove() bool {
	return s == FriendshipPending || s == FriendshipAccepted
}

// Follower は主催者のフォロー関係
type Follower struct {
	ID          string
	UserID      string
	OrganizerID string
	CreatedAt   time.Time
}

// Message はユーザー間のメッセージ
type Message struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsUnreadFor は指定ユーザー宛ての未読メッセージかを返す
func (m *Message) IsUnreadFor(userID string) bool {
	return m.ToUserID == userID && !m.Read
}
