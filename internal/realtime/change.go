package realtime

import (
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

// ChangeType は行変更の種別
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	// ChangeResync は接続が張り直され、取りこぼしの可能性があることを示す
	ChangeResync ChangeType = "RESYNC"
)

// Channel はトリガーが通知するチャンネル名
const Channel = "table_changes"

var ErrInvalidPayload = errors.New("変更通知のペイロードが不正です")

// Change はテーブルの行変更1件
type Change struct {
	Table           string
	Type            ChangeType
	Record          gjson.Result
	OldRecord       gjson.Result
	CommitTimestamp time.Time
}

// Decode は pg_notify のペイロードを Change に変換する
func Decode(payload string) (Change, error) {
	if !gjson.Valid(payload) {
		return Change{}, ErrInvalidPayload
	}
	root := gjson.Parse(payload)
	c := Change{
		Table:     root.Get("table").String(),
		Type:      ChangeType(root.Get("type").String()),
		Record:    root.Get("record"),
		OldRecord: root.Get("old_record"),
	}
	if c.Table == "" || c.Type == "" {
		return Change{}, ErrInvalidPayload
	}
	if ts := root.Get("commit_timestamp").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			c.CommitTimestamp = t
		}
	}
	return c, nil
}

// Key は配信の重複判定に使うキーを返す
func (c Change) Key() string {
	return c.Table + ":" + string(c.Type) + ":" + c.Record.Get("id").String() + ":" +
		c.CommitTimestamp.Format(time.RFC3339Nano)
}

// Filter は購読対象を絞り込む
type Filter struct {
	Table string
	Types []ChangeType
	// Match は行単位の条件（nilなら全件）
	Match func(Change) bool
}

func (f Filter) accepts(c Change) bool {
	if c.Type == ChangeResync {
		return true
	}
	if f.Table != "" && f.Table != c.Table {
		return false
	}
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if t == c.Type {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return f.Match == nil || f.Match(c)
}
