// Package viewstate はクライアント側の表示状態をリモートの状態に追従させるフックを提供する
//
// 各フックは mutex で保護されたローカル状態を持ち、ライフサイクル関数は成否を bool で返す。
// エラーは呼び出し元に返さず、ログと通知（トースト相当）で表面化する。
package viewstate

import (
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

// Session は現在のユーザー（未ログインなら UserID は空）
type Session struct {
	UserID string
}

// SignedIn はログイン済みかを返す
func (s Session) SignedIn() bool {
	return s.UserID != ""
}

// Notifier はユーザーへの通知（トースト）
type Notifier interface {
	Success(message string)
	Error(message string, err error)
}

// LogNotifier は通知をログに出力する
type LogNotifier struct{}

func (LogNotifier) Success(message string) {
	logger.Info(message)
}

func (LogNotifier) Error(message string, err error) {
	if err != nil {
		logger.Error(message, zap.Error(err))
		return
	}
	logger.Warn(message)
}

var _ Notifier = LogNotifier{}

func notifierOrDefault(n Notifier) Notifier {
	if n == nil {
		return LogNotifier{}
	}
	return n
}
