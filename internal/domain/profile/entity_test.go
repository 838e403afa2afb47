package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestUpdate_Columns(t *testing.T) {
	visible := false
	u := Update{
		DisplayName:        strPtr("Ana"),
		Bio:                strPtr(""),
		FindFriendsVisible: &visible,
	}

	cols := u.Columns()

	assert.Len(t, cols, 3)
	assert.Equal(t, "Ana", cols["display_name"])
	// 空文字も明示的な更新として扱う
	assert.Equal(t, "", cols["bio"])
	assert.Equal(t, false, cols["find_friends_visible"])
	assert.False(t, u.IsEmpty())
}

func TestUpdate_IsEmpty(t *testing.T) {
	assert.True(t, Update{}.IsEmpty())
	assert.Empty(t, Update{}.Columns())
}
