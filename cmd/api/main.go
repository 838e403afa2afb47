package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/api/handler"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/api/server"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/application"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/config"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/infrastructure/ai"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/infrastructure/authn"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/infrastructure/postgres"
	redisinfra "github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/infrastructure/redis"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/infrastructure/stripe"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/metrics"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/worker"
)

// webhookDedupeTTL は処理済みWebhookイベントを覚えておく期間
const webhookDedupeTTL = 72 * time.Hour

func main() {
	// .env は任意（ローカル開発用）
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Env))
	defer logger.Sync()

	m := metrics.Init()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if cfg.Server.MigrationsPath != "" {
		if err := postgres.RunMigrations(db.DB, cfg.Server.MigrationsPath); err != nil {
			logger.Fatal("マイグレーションエラー", zap.Error(err))
		}
	}

	healthChecks := []handler.HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return postgres.Ping(ctx, db) }},
	}

	// Redisは任意。未接続ならロックと重複排除なしで動かす
	var (
		locker application.Locker
		dedupe application.WebhookDedupe
	)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	rc, err := redisinfra.Connect(pingCtx, &cfg.Redis)
	if err != nil {
		logger.Warn("Redisに接続できません。分散ロックなしで起動します", zap.Error(err))
	} else {
		defer rc.Close()
		locker = redisinfra.NewLockManager(rc, redisinfra.WithMetrics(m))
		dedupe = redisinfra.NewWebhookDedupe(rc, webhookDedupeTTL)
		healthChecks = append(healthChecks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisinfra.Ping(ctx, rc) },
		})
	}
	cancelPing()

	// リポジトリ
	eventRepo := postgres.NewEventRepository(db)
	organizerRepo := postgres.NewOrganizerRepository(db)
	saleRepo := postgres.NewSaleRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	txManager := postgres.NewTxManager(db)

	// 外部サービス
	gateway := stripe.NewGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	verifier := authn.NewVerifier(&cfg.Supabase)

	// サービス
	closerService := application.NewEventCloserService(eventRepo, m)
	connectService := application.NewConnectService(organizerRepo, gateway, locker)
	saleService := application.NewSaleService(application.SaleServiceDeps{
		Sales:      saleRepo,
		Tickets:    ticketRepo,
		Organizers: organizerRepo,
		Profiles:   profileRepo,
		Gateway:    gateway,
		TxManager:  txManager,
		Dedupe:     dedupe,
		Metrics:    m,
	})
	descriptionService := application.NewDescriptionService(ai.NewClient(&cfg.AI), m)

	e := server.New(server.Deps{
		Health:          handler.NewHealthHandler(healthChecks...),
		EventCloser:     handler.NewEventCloserHandler(closerService),
		Connect:         handler.NewConnectHandler(connectService),
		Sale:            handler.NewSaleHandler(saleService),
		Description:     handler.NewDescriptionHandler(descriptionService),
		Verifier:        verifier,
		Roles:           roleRepo,
		Metrics:         m,
		Gatherer:        prometheus.DefaultGatherer,
		MetricsAuth:     cfg.Metrics,
		AIRatePerMinute: cfg.AI.RatePerMinute,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 終了イベントの自動クローズ
	var closer *worker.EventCloser
	if cfg.EventCloser.Enabled {
		closer, err = worker.NewEventCloser(closerService, locker, cfg.EventCloser.Schedule, cfg.EventCloser.LockTTL)
		if err != nil {
			logger.Fatal("ワーカー設定エラー", zap.Error(err))
		}
		go closer.Start(ctx)
	}

	// サーバー起動
	go func() {
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	<-ctx.Done()
	logger.Info("サーバーをシャットダウンしています...")

	if closer != nil {
		closer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
