package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WebhookDedupe は処理済みWebhookイベントIDを記録する
// 決済プロバイダは同じイベントを複数回配信することがある
type WebhookDedupe struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWebhookDedupe は新しいWebhookDedupeインスタンスを作成する
func NewWebhookDedupe(client *redis.Client, ttl time.Duration) *WebhookDedupe {
	return &WebhookDedupe{client: client, ttl: ttl}
}

// Claim はイベントIDを SET NX で確保する
// 同時に届いた配信のうち true を受け取るのは1つだけ
func (d *WebhookDedupe) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(eventID), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("処理済みイベントの記録に失敗: %w", err)
	}
	return ok, nil
}

// Release は確保を取り消し、再配信を受け付けるようにする
func (d *WebhookDedupe) Release(ctx context.Context, eventID string) error {
	if err := d.client.Del(ctx, d.key(eventID)).Err(); err != nil {
		return fmt.Errorf("処理済みイベントの削除に失敗: %w", err)
	}
	return nil
}

func (d *WebhookDedupe) key(eventID string) string {
	return fmt.Sprintf("webhook:processed:%s", eventID)
}
