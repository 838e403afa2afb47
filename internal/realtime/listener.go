package realtime

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

// PQSource は lib/pq の Listener を使った Source
type PQSource struct {
	listener *pq.Listener
}

// Listen はチャンネルの購読を開始する
func Listen(dsn string) (*PQSource, error) {
	l := pq.NewListener(dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected:
			logger.Warn("変更通知の接続が切断されました", zap.Error(err))
		case pq.ListenerEventReconnected:
			logger.Info("変更通知に再接続しました")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("変更通知の再接続に失敗しました", zap.Error(err))
		}
	})
	if err := l.Listen(Channel); err != nil {
		l.Close()
		return nil, fmt.Errorf("LISTEN %s に失敗: %w", Channel, err)
	}
	return &PQSource{listener: l}, nil
}

func (s *PQSource) Notifications() <-chan *pq.Notification {
	return s.listener.Notify
}

func (s *PQSource) Close() error {
	return s.listener.Close()
}

var _ Source = (*PQSource)(nil)
