package viewstate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/social"
)

func TestFollow_Toggle(t *testing.T) {
	t.Run("フォローとフォロー解除を切り替える", func(t *testing.T) {
		store := new(MockFollowerRepository)
		store.On("IsFollowing", mock.Anything, "me", "org-1").Return(false, nil)
		store.On("Follow", mock.Anything, "me", "org-1").Return(nil)
		store.On("Unfollow", mock.Anything, "me", "org-1").Return(nil)
		n := &recordingNotifier{}

		f := NewFollow(me, "org-1", store, n)
		assert.True(t, f.Load(context.Background()))
		assert.False(t, f.IsFollowing())

		assert.True(t, f.Toggle(context.Background()))
		assert.True(t, f.IsFollowing())

		assert.True(t, f.Toggle(context.Background()))
		assert.False(t, f.IsFollowing())

		assert.Equal(t, []string{
			"Agora você está seguindo este organizador!",
			"Você deixou de seguir este organizador",
		}, n.successes)
	})

	t.Run("既にフォロー済みならリモートの状態に合わせる", func(t *testing.T) {
		store := new(MockFollowerRepository)
		store.On("Follow", mock.Anything, "me", "org-1").Return(social.ErrAlreadyFollowing)

		f := NewFollow(me, "org-1", store, nil)

		assert.True(t, f.Toggle(context.Background()))
		assert.True(t, f.IsFollowing())
	})

	t.Run("書き込みに失敗したら状態を変えない", func(t *testing.T) {
		store := new(MockFollowerRepository)
		store.On("Follow", mock.Anything, "me", "org-1").Return(errors.New("network"))
		n := &recordingNotifier{}

		f := NewFollow(me, "org-1", store, n)

		assert.False(t, f.Toggle(context.Background()))
		assert.False(t, f.IsFollowing())
		assert.Equal(t, []string{"Erro ao atualizar status de seguidor"}, n.errors)
	})

	t.Run("未ログインはフォローできない", func(t *testing.T) {
		store := new(MockFollowerRepository)
		n := &recordingNotifier{}

		assert.False(t, NewFollow(Session{}, "org-1", store, n).Toggle(context.Background()))
		assert.False(t, NewFollow(me, "", store, n).Toggle(context.Background()))
		assert.Equal(t, []string{"Faça login para seguir organizadores", "ID do organizador não encontrado"}, n.errors)
	})
}
