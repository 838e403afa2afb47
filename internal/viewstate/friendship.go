package viewstate

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/social"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
)

// Friendship は特定ユーザーとの友達関係の表示状態
// 状態遷移は none → pending（AddFriend）と pending/accepted → none（RemoveFriend）のみ
type Friendship struct {
	session  Session
	friendID string
	store    social.FriendshipRepository
	notifier Notifier

	mu      sync.RWMutex
	status  social.FriendshipStatus
	loading bool
}

func NewFriendship(session Session, friendID string, store social.FriendshipRepository, n Notifier) *Friendship {
	return &Friendship{
		session:  session,
		friendID: friendID,
		store:    store,
		notifier: notifierOrDefault(n),
		status:   social.FriendshipNone,
	}
}

func (f *Friendship) Status() social.FriendshipStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

func (f *Friendship) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

func (f *Friendship) setLoading(v bool) {
	f.mu.Lock()
	f.loading = v
	f.mu.Unlock()
}

// Load はリモートの関係を読み込む
func (f *Friendship) Load(ctx context.Context) bool {
	if !f.session.SignedIn() || f.friendID == "" {
		return false
	}
	f.setLoading(true)
	defer f.setLoading(false)

	rel, err := f.store.FindBetween(ctx, f.session.UserID, f.friendID)
	status := social.FriendshipNone
	switch {
	case err == nil:
		status = rel.Status
	case errors.Is(err, social.ErrFriendshipNotFound):
	default:
		logger.Error("友達関係の取得に失敗しました", zap.String("friendId", f.friendID), zap.Error(err))
		return false
	}

	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
	return true
}

// AddFriend は友達申請を送り、成功したら pending にする
func (f *Friendship) AddFriend(ctx context.Context) bool {
	if !f.session.SignedIn() {
		f.notifier.Error("Faça login para adicionar amigos", nil)
		return false
	}
	if f.friendID == "" {
		f.notifier.Error("ID do usuário não encontrado", nil)
		return false
	}
	if f.friendID == f.session.UserID {
		f.notifier.Error("Erro ao adicionar amigo", social.ErrCannotFriendYourself)
		return false
	}
	if !f.Status().CanRequest() {
		return false
	}

	f.setLoading(true)
	defer f.setLoading(false)

	if _, err := f.store.CreateRequest(ctx, f.session.UserID, f.friendID); err != nil {
		f.notifier.Error("Erro ao adicionar amigo", err)
		return false
	}

	f.mu.Lock()
	f.status = social.FriendshipPending
	f.mu.Unlock()
	f.notifier.Success("Solicitação de amizade enviada!")
	return true
}

// RemoveFriend は方向を問わず関係を削除し、成功したら none にする
func (f *Friendship) RemoveFriend(ctx context.Context) bool {
	if !f.session.SignedIn() || f.friendID == "" {
		return false
	}

	f.setLoading(true)
	defer f.setLoading(false)

	if _, err := f.store.DeleteBetween(ctx, f.session.UserID, f.friendID); err != nil {
		f.notifier.Error("Erro ao remover amigo", err)
		return false
	}

	f.mu.Lock()
	f.status = social.FriendshipNone
	f.mu.Unlock()
	f.notifier.Success("Amigo removido")
	return true
}

// FriendRequests は自分宛ての友達申請への応答
type FriendRequests struct {
	session  Session
	store    social.FriendshipRepository
	notifier Notifier

	mu      sync.RWMutex
	loading bool
}

func NewFriendRequests(session Session, store social.FriendshipRepository, n Notifier) *FriendRequests {
	return &FriendRequests{session: session, store: store, notifier: notifierOrDefault(n)}
}

func (r *FriendRequests) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

func (r *FriendRequests) setLoading(v bool) {
	r.mu.Lock()
	r.loading = v
	r.mu.Unlock()
}

// Accept は requesterID から自分宛ての申請 friendshipID だけを承認する
func (r *FriendRequests) Accept(ctx context.Context, friendshipID, requesterID string) bool {
	if !r.session.SignedIn() {
		return false
	}
	r.setLoading(true)
	defer r.setLoading(false)

	if err := r.store.AcceptRequest(ctx, friendshipID, requesterID, r.session.UserID); err != nil {
		r.notifier.Error("Erro ao aceitar solicitação", err)
		return false
	}
	r.notifier.Success("Solicitação aceita!")
	return true
}

// Decline は requesterID から自分宛ての申請 friendshipID だけを削除する
func (r *FriendRequests) Decline(ctx context.Context, friendshipID, requesterID string) bool {
	if !r.session.SignedIn() {
		return false
	}
	r.setLoading(true)
	defer r.setLoading(false)

	if err := r.store.DeclineRequest(ctx, friendshipID, requesterID, r.session.UserID); err != nil {
		r.notifier.Error("Erro ao recusar solicitação", err)
		return false
	}
	r.notifier.Success("Solicitação recusada")
	return true
}
