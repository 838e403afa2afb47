package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/event"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/metrics"
)

// memoryEventRepository は状態条件を再現するインメモリ実装
type memoryEventRepository struct {
	mu       sync.Mutex
	events   map[string]*event.Event
	platform map[string]*event.PlatformEvent
}

func newMemoryEventRepository() *memoryEventRepository {
	return &memoryEventRepository{
		events:   make(map[string]*event.Event),
		platform: make(map[string]*event.PlatformEvent),
	}
}

func (r *memoryEventRepository) ListEnded(ctx context.Context, now time.Time) ([]*event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*event.Event
	for _, e := range r.events {
		if e.HasEnded(now) {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memoryEventRepository) MarkCompleted(ctx context.Context, ids []string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if e, ok := r.events[id]; ok && e.Status != event.StatusCompleted {
			e.Complete(now)
			n++
		}
	}
	return n, nil
}

func (r *memoryEventRepository) ListEndedPlatform(ctx context.Context, now time.Time) ([]*event.PlatformEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*event.PlatformEvent
	for _, p := range r.platform {
		if p.HasEnded(now) {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memoryEventRepository) MarkPlatformEnded(ctx context.Context, ids []string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if p, ok := r.platform[id]; ok && p.Status != event.StatusCompleted && p.Status != event.StatusEnded {
			p.End(now)
			n++
		}
	}
	return n, nil
}

func timePtr(t time.Time) *time.Time { return &t }

func TestEventCloserService_CloseEndedEvents(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	repo := newMemoryEventRepository()
	repo.events["live"] = &event.Event{ID: "live", Title: "Live", EndDate: timePtr(past), Status: event.StatusLive, IsLive: true}
	repo.events["upcoming"] = &event.Event{ID: "upcoming", Title: "Festa", EndDate: timePtr(past), Status: event.StatusUpcoming}
	repo.events["done"] = &event.Event{ID: "done", Title: "Antigo", EndDate: timePtr(past), Status: event.StatusCompleted}
	repo.events["future"] = &event.Event{ID: "future", Title: "Futuro", EndDate: timePtr(future), Status: event.StatusUpcoming}
	repo.events["open"] = &event.Event{ID: "open", Title: "Sem fim", Status: event.StatusUpcoming}
	repo.platform["p-up"] = &event.PlatformEvent{ID: "p-up", Title: "Carnaval", EndDate: timePtr(past), Status: event.StatusUpcoming}
	repo.platform["p-ended"] = &event.PlatformEvent{ID: "p-ended", Title: "Feira", EndDate: timePtr(past), Status: event.StatusEnded}
	repo.platform["p-completed"] = &event.PlatformEvent{ID: "p-completed", Title: "Expo", EndDate: timePtr(past), Status: event.StatusCompleted}

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	service := NewEventCloserService(repo, m)

	t.Run("終了時刻を過ぎた未終了イベントだけを終了させる", func(t *testing.T) {
		result, err := service.CloseEndedEvents(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, int64(2), result.EndedCount)
		assert.Equal(t, int64(1), result.PlatformEndedCount)
		assert.Len(t, result.Events, 3)
		assert.Equal(t, "Ended 3 events", result.Message())

		assert.Equal(t, event.StatusCompleted, repo.events["live"].Status)
		assert.False(t, repo.events["live"].IsLive)
		assert.Equal(t, event.StatusCompleted, repo.events["upcoming"].Status)
		assert.Equal(t, event.StatusUpcoming, repo.events["future"].Status)
		assert.Equal(t, event.StatusUpcoming, repo.events["open"].Status)
		assert.Equal(t, event.StatusEnded, repo.platform["p-up"].Status)
		assert.Equal(t, event.StatusCompleted, repo.platform["p-completed"].Status, "completed のプラットフォームイベントは変更しない")

		assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsClosedTotal.WithLabelValues("event")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsClosedTotal.WithLabelValues("platform_event")))
	})

	t.Run("2回目の実行では何も更新しない", func(t *testing.T) {
		result, err := service.CloseEndedEvents(context.Background(), now.Add(time.Minute))

		require.NoError(t, err)
		assert.Zero(t, result.EndedCount)
		assert.Zero(t, result.PlatformEndedCount)
		assert.Empty(t, result.Events)
		assert.Equal(t, "No events to end", result.Message())
	})
}

func TestEventCloserService_Failure(t *testing.T) {
	now := time.Now()
	dbErr := errors.New("connection refused")

	t.Run("通常イベントの取得失敗で中断する", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("ListEnded", mock.Anything, now).Return(nil, dbErr)

		_, err := NewEventCloserService(repo, nil).CloseEndedEvents(context.Background(), now)

		assert.ErrorIs(t, err, dbErr)
		repo.AssertNotCalled(t, "ListEndedPlatform", mock.Anything, mock.Anything)
	})

	t.Run("プラットフォームイベントの失敗時も通常イベントの更新は戻さない", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("ListEnded", mock.Anything, now).Return([]*event.Event{{ID: "e1", Title: "Show"}}, nil)
		repo.On("MarkCompleted", mock.Anything, []string{"e1"}, now).Return(int64(1), nil)
		repo.On("ListEndedPlatform", mock.Anything, now).Return(nil, dbErr)

		_, err := NewEventCloserService(repo, nil).CloseEndedEvents(context.Background(), now)

		assert.ErrorIs(t, err, dbErr)
		repo.AssertExpectations(t)
	})
}
