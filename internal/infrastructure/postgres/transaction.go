package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/transaction"
)

// sqlTx は transaction.Tx の sqlx 実装
type sqlTx struct {
	*sqlx.Tx
}

// TxManager は販売確定用のトランザクションを発行する
// 販売の完了と販売数の加算は同じ行を複数の経路（検証とWebhook）が更新するため、
// READ COMMITTED と条件付きUPDATEの組み合わせで二重加算を防ぐ
type TxManager struct {
	db   *sqlx.DB
	opts *sql.TxOptions
}

// NewTxManager は TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db, opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted}}
}

// Begin はトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, m.opts)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	return &sqlTx{Tx: tx}, nil
}

// execer は tx が sqlTx ならそれを、nil や他実装なら db を返す
func execer(db *sqlx.DB, tx transaction.Tx) sqlx.ExtContext {
	if t, ok := tx.(*sqlTx); ok && t != nil {
		return t.Tx
	}
	return db
}

var _ transaction.Manager = (*TxManager)(nil)
