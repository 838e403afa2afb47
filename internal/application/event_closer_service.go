package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/event"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/metrics"
)

// CloseResult は自動終了処理の結果
type CloseResult struct {
	EndedCount         int64                `json:"endedCount"`
	PlatformEndedCount int64                `json:"platformEndedCount"`
	Events             []*event.ClosedEvent `json:"events"`
}

// Message は結果の要約メッセージを返す
func (r *CloseResult) Message() string {
	total := r.EndedCount + r.PlatformEndedCount
	if total == 0 {
		return "No events to end"
	}
	return fmt.Sprintf("Ended %d events", total)
}

// EventCloserService は終了時刻を過ぎたイベントを終了状態にする
type EventCloserService struct {
	eventRepo event.Repository
	metrics   *metrics.Metrics
}

func NewEventCloserService(er event.Repository, m *metrics.Metrics) *EventCloserService {
	return &EventCloserService{eventRepo: er, metrics: m}
}

// CloseEndedEvents は通常イベントを completed に、プラットフォームイベントを ended にする
// 状態条件で絞り込むため何度実行しても結果は変わらない
// 途中で失敗した場合、それまでの更新は戻さない
func (s *EventCloserService) CloseEndedEvents(ctx context.Context, now time.Time) (*CloseResult, error) {
	result := &CloseResult{Events: []*event.ClosedEvent{}}

	events, err := s.eventRepo.ListEnded(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		ids := make([]string, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}
		n, err := s.eventRepo.MarkCompleted(ctx, ids, now)
		if err != nil {
			return nil, err
		}
		result.EndedCount = n
		for _, e := range events {
			result.Events = append(result.Events, &event.ClosedEvent{ID: e.ID, Title: e.Title, EndDate: e.EndDate, Kind: event.KindEvent})
		}
		s.count(event.KindEvent, n)
	}

	platformEvents, err := s.eventRepo.ListEndedPlatform(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(platformEvents) > 0 {
		ids := make([]string, 0, len(platformEvents))
		for _, p := range platformEvents {
			ids = append(ids, p.ID)
		}
		n, err := s.eventRepo.MarkPlatformEnded(ctx, ids, now)
		if err != nil {
			return nil, err
		}
		result.PlatformEndedCount = n
		for _, p := range platformEvents {
			result.Events = append(result.Events, &event.ClosedEvent{ID: p.ID, Title: p.Title, EndDate: p.EndDate, Kind: event.KindPlatform})
		}
		s.count(event.KindPlatform, n)
	}

	logger.Info("終了イベントを処理しました",
		zap.Int64("ended", result.EndedCount),
		zap.Int64("platform_ended", result.PlatformEndedCount),
	)
	return result, nil
}

func (s *EventCloserService) count(kind event.Kind, n int64) {
	if s.metrics == nil || n == 0 {
		return
	}
	s.metrics.EventsClosedTotal.WithLabelValues(string(kind)).Add(float64(n))
}
