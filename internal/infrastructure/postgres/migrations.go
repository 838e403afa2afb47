package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

// ErrMigrationsPathRequired はマイグレーションのパスが未指定の場合のエラー
var ErrMigrationsPathRequired = errors.New("マイグレーションのパスが指定されていません")

// migrateLogger は golang-migrate のログをzapに流す
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), zap.String("component", "migrate"))
}

func (migrateLogger) Verbose() bool { return false }

// RunMigrations はローカル・開発用スキーマ（通知トリガー含む）を適用する
// ホスト型DBではスキーマは外部で管理されるため、呼び出し側がパス未指定時にスキップする
func RunMigrations(db *sql.DB, migrationsPath string) error {
	if migrationsPath == "" {
		return ErrMigrationsPathRequired
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("マイグレーションドライバー作成エラー: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("マイグレーションインスタンス作成エラー: %w", err)
	}
	m.Log = migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("マイグレーション実行エラー: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("スキーマバージョン取得エラー: %w", err)
	}
	if dirty {
		return fmt.Errorf("スキーマがdirty状態です (version=%d)", version)
	}
	logger.Info("スキーマを適用しました", zap.Uint("version", version))
	return nil
}
