package event

import (
	"context"
	"time"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// ListEnded は終了時刻を過ぎた未完了の通常イベントを取得する
	ListEnded(ctx context.Context, now time.Time) ([]*Event, error)

	// MarkCompleted は指定した通常イベントを completed にし、is_live を false にする
	MarkCompleted(ctx context.Context, ids []string, now time.Time) (int64, error)

	// ListEndedPlatform は終了時刻を過ぎた未終了のプラットフォームイベントを取得する
	ListEndedPlatform(ctx context.Context, now time.Time) ([]*PlatformEvent, error)

	// MarkPlatformEnded は指定したプラットフォームイベントを ended にする
	MarkPlatformEnded(ctx context.Context, ids []string, now time.Time) (int64, error)
}

// FeedRepository はフィード表示用の読み書きを行うリポジトリ
type FeedRepository interface {
	// ListUpcoming は開催予定の通常イベントを、閲覧ユーザーのいいね状態付きで取得する
	ListUpcoming(ctx context.Context, category, viewerID string) ([]*Listing, error)

	// ListUpcomingPlatform は開催予定のプラットフォームイベントを取得する
	ListUpcomingPlatform(ctx context.Context, category string) ([]*Listing, error)

	// ToggleLike はいいねを切り替え、切り替え後の状態といいね数を返す
	ToggleLike(ctx context.Context, eventID, userID string) (liked bool, likes int, err error)
}
