package application

import (
	"context"
	"time"
)

// Locker は分散ロックの抽象（Redisがない環境では nil を渡す）
type Locker interface {
	// WithLock はロックを取得できるまで待ってから fn を実行する
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error

	// TryWithLock はロックを1回だけ試し、取得できなければ fn を実行せず false を返す
	TryWithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error)
}
