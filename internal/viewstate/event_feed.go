package viewstate

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/event"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

// EventFeed はイベント一覧の表示状態
type EventFeed struct {
	session Session
	store   event.FeedRepository

	mu      sync.RWMutex
	events  []*event.Listing
	loading bool
}

func NewEventFeed(session Session, store event.FeedRepository) *EventFeed {
	return &EventFeed{session: session, store: store}
}

// Events は現在の一覧のコピーを返す
func (f *EventFeed) Events() []event.Listing {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]event.Listing, len(f.events))
	for i, l := range f.events {
		out[i] = *l
	}
	return out
}

func (f *EventFeed) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

func (f *EventFeed) setLoading(v bool) {
	f.mu.Lock()
	f.loading = v
	f.mu.Unlock()
}

// Fetch は通常イベントとプラットフォームイベントを並行に取得し、絞り込み・並べ替えて反映する
func (f *EventFeed) Fetch(ctx context.Context, filter event.FeedFilter) bool {
	f.setLoading(true)
	defer f.setLoading(false)

	category := filter.CategoryFilter()
	var regular, platform []*event.Listing

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regular, err = f.store.ListUpcoming(gctx, category, f.session.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		platform, err = f.store.ListUpcomingPlatform(gctx, category)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("イベント一覧の取得に失敗しました", zap.Error(err))
		return false
	}

	merged := make([]*event.Listing, 0, len(regular)+len(platform))
	merged = append(merged, regular...)
	merged = append(merged, platform...)

	merged = event.FilterByInterests(merged, filter.Interests)
	event.SortListings(merged)
	merged = event.Search(merged, filter.Search)

	f.mu.Lock()
	f.events = merged
	f.mu.Unlock()
	return true
}

// ToggleLike はいいねを切り替え、サーバーが返した状態といいね数で一覧を更新する
func (f *EventFeed) ToggleLike(ctx context.Context, eventID string) bool {
	if !f.session.SignedIn() {
		return false
	}

	liked, likes, err := f.store.ToggleLike(ctx, eventID, f.session.UserID)
	if err != nil {
		logger.Error("いいねの切り替えに失敗しました", zap.String("eventId", eventID), zap.Error(err))
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.events {
		if l.ID == eventID {
			l.IsLiked = liked
			l.LikesCount = likes
		}
	}
	return true
}
