package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

const subscriberBuffer = 64

// Source は通知の供給元
type Source interface {
	Notifications() <-chan *pq.Notification
	Close() error
}

// Subscriber は変更を購読できるもの
type Subscriber interface {
	Subscribe(filter Filter) (<-chan Change, func())
}

type subscription struct {
	filter Filter
	ch     chan Change
}

// Feed は変更通知を購読者に配信する
type Feed struct {
	source Source

	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int
	closed bool
}

// NewFeed は新しいFeedを作成する
func NewFeed(source Source) *Feed {
	return &Feed{source: source, subs: make(map[int]*subscription)}
}

// Subscribe は購読を開始し、受信チャンネルと解除関数を返す
func (f *Feed) Subscribe(filter Filter) (<-chan Change, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = &subscription{filter: filter, ch: ch}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if s, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(s.ch)
			}
		})
	}
}

// Run はコンテキストが終了するまで通知を配信する
func (f *Feed) Run(ctx context.Context) error {
	defer f.shutdown()
	notifications := f.source.Notifications()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			// 再接続後は nil が届く
			if n == nil {
				f.publish(Change{Type: ChangeResync, CommitTimestamp: time.Now()})
				continue
			}
			change, err := Decode(n.Extra)
			if err != nil {
				logger.Warn("変更通知の解析に失敗しました", zap.String("channel", n.Channel), zap.Error(err))
				continue
			}
			f.publish(change)
		}
	}
}

// publish は購読者に配信する。受信側が詰まっている場合は破棄する
func (f *Feed) publish(c Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.subs {
		if !s.filter.accepts(c) {
			continue
		}
		select {
		case s.ch <- c:
		default:
			logger.Warn("購読者のバッファが満杯のため変更を破棄しました",
				zap.Int("subscriber", id), zap.String("table", c.Table))
		}
	}
}

func (f *Feed) shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for id, s := range f.subs {
		close(s.ch)
		delete(f.subs, id)
	}
	f.source.Close()
}

var _ Subscriber = (*Feed)(nil)
