package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/application"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

const closerLockKey = "worker:event-closer"

// Closer は終了時刻を過ぎたイベントを閉じるインターフェース
type Closer interface {
	CloseEndedEvents(ctx context.Context, now time.Time) (*application.CloseResult, error)
}

// EventCloser はスケジュールに従ってイベントの自動終了を実行するワーカー
// ロックがあれば複数インスタンスのうち1つだけが実行する
type EventCloser struct {
	closer   Closer
	locker   application.Locker
	lockTTL  time.Duration
	schedule cron.Schedule
	cron     *cron.Cron
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewEventCloser は新しいワーカーを作成する
// expr は標準のcron式または "@every 1h" 形式
func NewEventCloser(c Closer, locker application.Locker, expr string, lockTTL time.Duration) (*EventCloser, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("スケジュールの解析に失敗: %w", err)
	}
	return &EventCloser{
		closer:   c,
		locker:   locker,
		lockTTL:  lockTTL,
		schedule: schedule,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start はワーカーを開始し、停止するまでブロックする
func (w *EventCloser) Start(ctx context.Context) {
	defer close(w.doneCh)

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	w.cron.Schedule(w.schedule, cron.FuncJob(func() { w.run(jobCtx) }))

	logger.Info("イベント自動終了ワーカー開始")
	w.cron.Start()

	select {
	case <-ctx.Done():
		logger.Info("イベント自動終了ワーカー停止（コンテキストキャンセル）")
	case <-w.stopCh:
		logger.Info("イベント自動終了ワーカー停止（シグナル受信）")
	}

	// 実行中のジョブの終了を待つ
	cancel()
	<-w.cron.Stop().Done()
}

// Stop はワーカーを停止する
func (w *EventCloser) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// run は1回分の自動終了を実行する
func (w *EventCloser) run(ctx context.Context) {
	log := logger.Step("AUTO-END-EVENTS")

	job := func(ctx context.Context) error {
		result, err := w.closer.CloseEndedEvents(ctx, w.now())
		if err != nil {
			return err
		}
		log.Info(result.Message(),
			zap.Int64("endedCount", result.EndedCount),
			zap.Int64("platformEndedCount", result.PlatformEndedCount),
		)
		return nil
	}

	if w.locker == nil {
		if err := job(ctx); err != nil {
			log.Error("イベントの自動終了に失敗", zap.Error(err))
		}
		return
	}

	acquired, err := w.locker.TryWithLock(ctx, closerLockKey, w.lockTTL, job)
	if err != nil {
		log.Error("イベントの自動終了に失敗", zap.Error(err))
		return
	}
	if !acquired {
		log.Debug("他のインスタンスが実行中のためスキップ")
	}
}
