package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/config"
)

// Redisはロックと重複排除にしか使わないため、応答が遅い場合は早めに諦める
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = time.Second
)

// Connect はRedisクライアントを作成し疎通を確認する
// 到達できない場合はクライアントを閉じてエラーを返す。呼び出し側はRedisなしで起動を続けられる
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})
	if err := Ping(ctx, client); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Ping はRedis接続を確認する
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis接続に失敗しました: %w", err)
	}
	return nil
}
