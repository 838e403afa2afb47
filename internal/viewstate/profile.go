package viewstate

import (
	"context"
	"errors"
	"sync"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/profile"
)

// Profile は自分のプロフィールの表示状態
type Profile struct {
	session  Session
	store    profile.Repository
	notifier Notifier

	mu      sync.RWMutex
	current *profile.Profile
	loading bool
	saving  bool
}

func NewProfile(session Session, store profile.Repository, n Notifier) *Profile {
	return &Profile{session: session, store: store, notifier: notifierOrDefault(n)}
}

// Current は読み込み済みのプロフィールのコピーを返す（未作成なら nil）
func (p *Profile) Current() *profile.Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil
	}
	c := *p.current
	return &c
}

func (p *Profile) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

func (p *Profile) Saving() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.saving
}

// Load はプロフィールを読み込む。行がなければ nil のまま成功とする
func (p *Profile) Load(ctx context.Context) bool {
	if !p.session.SignedIn() {
		return false
	}
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
	}()

	row, err := p.store.GetByUserID(ctx, p.session.UserID)
	if err != nil && !errors.Is(err, profile.ErrProfileNotFound) {
		p.notifier.Error("Erro ao carregar perfil", err)
		return false
	}

	p.mu.Lock()
	p.current = row
	p.mu.Unlock()
	return true
}

// Save はプロフィールを部分更新し、ローカルの状態をサーバーが返した行で置き換える
func (p *Profile) Save(ctx context.Context, update profile.Update) bool {
	if !p.session.SignedIn() || p.Current() == nil {
		return false
	}
	p.mu.Lock()
	p.saving = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.saving = false
		p.mu.Unlock()
	}()

	row, err := p.store.Update(ctx, p.session.UserID, update)
	if err != nil {
		p.notifier.Error("Erro ao salvar perfil", err)
		return false
	}

	p.mu.Lock()
	p.current = row
	p.mu.Unlock()
	p.notifier.Success("Perfil salvo com sucesso!")
	return true
}
