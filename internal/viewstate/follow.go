package viewstate

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/social"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

// Follow は主催者のフォロー状態
type Follow struct {
	session     Session
	organizerID string
	store       social.FollowerRepository
	notifier    Notifier

	mu        sync.RWMutex
	following bool
	loading   bool
}

func NewFollow(session Session, organizerID string, store social.FollowerRepository, n Notifier) *Follow {
	return &Follow{session: session, organizerID: organizerID, store: store, notifier: notifierOrDefault(n)}
}

func (f *Follow) IsFollowing() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.following
}

func (f *Follow) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

func (f *Follow) setLoading(v bool) {
	f.mu.Lock()
	f.loading = v
	f.mu.Unlock()
}

func (f *Follow) Load(ctx context.Context) bool {
	if !f.session.SignedIn() || f.organizerID == "" {
		return false
	}
	f.setLoading(true)
	defer f.setLoading(false)

	following, err := f.store.IsFollowing(ctx, f.session.UserID, f.organizerID)
	if err != nil {
		logger.Error("フォロー状態の取得に失敗しました", zap.String("organizerId", f.organizerID), zap.Error(err))
		return false
	}
	f.mu.Lock()
	f.following = following
	f.mu.Unlock()
	return true
}

// Toggle はフォロー・フォロー解除を切り替える
func (f *Follow) Toggle(ctx context.Context) bool {
	if !f.session.SignedIn() {
		f.notifier.Error("Faça login para seguir organizadores", nil)
		return false
	}
	if f.organizerID == "" {
		f.notifier.Error("ID do organizador não encontrado", nil)
		return false
	}

	f.setLoading(true)
	defer f.setLoading(false)

	if f.IsFollowing() {
		if err := f.store.Unfollow(ctx, f.session.UserID, f.organizerID); err != nil {
			f.notifier.Error("Erro ao atualizar status de seguidor", err)
			return false
		}
		f.set(false)
		f.notifier.Success("Você deixou de seguir este organizador")
		return true
	}

	if err := f.store.Follow(ctx, f.session.UserID, f.organizerID); err != nil {
		// 別の端末で既にフォロー済みならリモートの状態に合わせる
		if errors.Is(err, social.ErrAlreadyFollowing) {
			f.set(true)
			return true
		}
		f.notifier.Error("Erro ao atualizar status de seguidor", err)
		return false
	}
	f.set(true)
	f.notifier.Success("Agora você está seguindo este organizador!")
	return true
}

func (f *Follow) set(v bool) {
	f.mu.Lock()
	f.following = v
	f.mu.Unlock()
}
