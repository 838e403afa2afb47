package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("トリガーのペイロードを解析できる", func(t *testing.T) {
		payload := `{"table":"user_messages","type":"UPDATE",
			"record":{"id":"m1","to_user_id":"me","read":true},
			"old_record":{"id":"m1","to_user_id":"me","read":false},
			"commit_timestamp":"2025-05-01T12:00:00.123456Z"}`

		c, err := Decode(payload)

		require.NoError(t, err)
		assert.Equal(t, "user_messages", c.Table)
		assert.Equal(t, ChangeUpdate, c.Type)
		assert.True(t, c.Record.Get("read").Bool())
		assert.False(t, c.OldRecord.Get("read").Bool())
		assert.Equal(t, time.Date(2025, 5, 1, 12, 0, 0, 123456000, time.UTC), c.CommitTimestamp)
	})

	t.Run("不正なJSONはErrInvalidPayload", func(t *testing.T) {
		_, err := Decode(`{not json`)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("テーブル名がなければErrInvalidPayload", func(t *testing.T) {
		_, err := Decode(`{"type":"INSERT","record":{}}`)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestChange_Key(t *testing.T) {
	payload := `{"table":"user_messages","type":"INSERT","record":{"id":"m1"},"commit_timestamp":"2025-05-01T12:00:00Z"}`
	a, err := Decode(payload)
	require.NoError(t, err)
	b, err := Decode(payload)
	require.NoError(t, err)
	other, err := Decode(`{"table":"user_messages","type":"UPDATE","record":{"id":"m1"},"commit_timestamp":"2025-05-01T12:00:00Z"}`)
	require.NoError(t, err)

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), other.Key())
}

func TestFilter_Accepts(t *testing.T) {
	insert := Change{Table: "user_messages", Type: ChangeInsert}
	update := Change{Table: "user_messages", Type: ChangeUpdate}
	friend := Change{Table: "friendships", Type: ChangeInsert}

	f := Filter{Table: "user_messages", Types: []ChangeType{ChangeInsert}}

	assert.True(t, f.accepts(insert))
	assert.False(t, f.accepts(update))
	assert.False(t, f.accepts(friend))
	assert.True(t, f.accepts(Change{Type: ChangeResync}), "再同期は常に配信される")

	withMatch := Filter{Match: func(c Change) bool { return c.Table == "friendships" }}
	assert.True(t, withMatch.accepts(friend))
	assert.False(t, withMatch.accepts(insert))
}
