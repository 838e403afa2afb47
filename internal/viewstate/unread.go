package viewstate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/social"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/realtime"
)

const (
	messagesTable            = "user_messages"
	defaultReconcileInterval = time.Minute
	seenKeysLimit            = 1024
)

// UnreadCounter は未読メッセージ数を変更フィードで追従する
// 配信の重複はキーで除外し、定期的に正しい件数で上書きする
// 件数を読み込む直前より前にコミットされた変更は件数に含まれているため反映しない
type UnreadCounter struct {
	session           Session
	store             social.MessageRepository
	feed              realtime.Subscriber
	reconcileInterval time.Duration
	now               func() time.Time

	mu       sync.RWMutex
	count    int
	since    time.Time
	seen     map[string]struct{}
	seenFIFO []string

	cancel context.CancelFunc
	done   chan struct{}
}

// UnreadOption はUnreadCounterの設定
type UnreadOption func(*UnreadCounter)

// WithReconcileInterval は件数を読み直す間隔を設定する
func WithReconcileInterval(d time.Duration) UnreadOption {
	return func(u *UnreadCounter) {
		if d > 0 {
			u.reconcileInterval = d
		}
	}
}

func NewUnreadCounter(session Session, store social.MessageRepository, feed realtime.Subscriber, opts ...UnreadOption) *UnreadCounter {
	u := &UnreadCounter{
		session:           session,
		store:             store,
		feed:              feed,
		reconcileInterval: defaultReconcileInterval,
		now:               time.Now,
		seen:              make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *UnreadCounter) Count() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.count
}

// Start は件数を読み込み、変更フィードの購読を開始する
// 購読中に呼ばれた場合は何もしない
func (u *UnreadCounter) Start(ctx context.Context) bool {
	if !u.session.SignedIn() {
		u.mu.Lock()
		u.count = 0
		u.mu.Unlock()
		return false
	}

	u.mu.Lock()
	if u.cancel != nil {
		u.mu.Unlock()
		return true
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	u.cancel = cancel
	u.done = done
	u.mu.Unlock()

	// 購読を先に開始し、初回読み込みとの間の変更を取りこぼさない
	userID := u.session.UserID
	changes, unsubscribe := u.feed.Subscribe(realtime.Filter{
		Table: messagesTable,
		Types: []realtime.ChangeType{realtime.ChangeInsert, realtime.ChangeUpdate},
		Match: func(c realtime.Change) bool {
			return c.Record.Get("to_user_id").String() == userID
		},
	})

	ok := u.reconcile(ctx)

	go u.run(ctx, changes, unsubscribe, done)
	return ok
}

// Stop は購読を終了する
func (u *UnreadCounter) Stop() {
	u.mu.Lock()
	cancel, done := u.cancel, u.done
	u.cancel = nil
	u.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (u *UnreadCounter) run(ctx context.Context, changes <-chan realtime.Change, unsubscribe func(), done chan struct{}) {
	defer close(done)
	defer unsubscribe()

	ticker := time.NewTicker(u.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.reconcile(ctx)
		case c, ok := <-changes:
			if !ok {
				return
			}
			if c.Type == realtime.ChangeResync {
				u.reconcile(ctx)
				continue
			}
			u.apply(c)
		}
	}
}

// reconcile は正しい件数を取得して上書きする
func (u *UnreadCounter) reconcile(ctx context.Context) bool {
	cutoff := u.now()
	n, err := u.store.CountUnread(ctx, u.session.UserID)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("未読数の取得に失敗しました", zap.Error(err))
		}
		return false
	}
	u.mu.Lock()
	u.count = n
	u.since = cutoff
	u.mu.Unlock()
	return true
}

// apply は変更1件を件数に反映する
func (u *UnreadCounter) apply(c realtime.Change) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !c.CommitTimestamp.IsZero() && !c.CommitTimestamp.After(u.since) {
		return
	}

	key := c.Key()
	if _, dup := u.seen[key]; dup {
		return
	}
	u.remember(key)

	switch c.Type {
	case realtime.ChangeInsert:
		if !c.Record.Get("read").Bool() {
			u.count++
		}
	case realtime.ChangeUpdate:
		if !c.OldRecord.Get("read").Bool() && c.Record.Get("read").Bool() && u.count > 0 {
			u.count--
		}
	}
}

func (u *UnreadCounter) remember(key string) {
	u.seen[key] = struct{}{}
	u.seenFIFO = append(u.seenFIFO, key)
	if len(u.seenFIFO) > seenKeysLimit {
		delete(u.seen, u.seenFIFO[0])
		u.seenFIFO = u.seenFIFO[1:]
	}
}
