// unread-watch は変更フィード経由でユーザーの未読メッセージ数を追従し、変化を出力する開発用ツール
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/config"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/infrastructure/postgres"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/realtime"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/viewstate"
)

func main() {
	userID := flag.String("user", "", "未読数を追従するユーザーID")
	reconcile := flag.Duration("reconcile", time.Minute, "件数を読み直す間隔")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Env))
	defer logger.Sync()

	if *userID == "" {
		logger.Error("-user を指定してください")
		os.Exit(2)
	}

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	source, err := realtime.Listen(cfg.Database.DSN())
	if err != nil {
		logger.Fatal("変更フィードの購読に失敗", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := realtime.NewFeed(source)
	go func() {
		if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("変更フィード停止", zap.Error(err))
			stop()
		}
	}()

	counter := viewstate.NewUnreadCounter(
		viewstate.Session{UserID: *userID},
		postgres.NewMessageRepository(db),
		feed,
		viewstate.WithReconcileInterval(*reconcile),
	)
	if !counter.Start(ctx) {
		logger.Fatal("未読数の追従を開始できません", zap.String("user_id", *userID))
	}
	defer counter.Stop()

	last := -1
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := counter.Count(); n != last {
				logger.Info("未読メッセージ数", zap.String("user_id", *userID), zap.Int("unread", n))
				last = n
			}
		}
	}
}
