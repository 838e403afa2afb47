package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_HasEnded(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		event    *Event
		expected bool
	}{
		{"終了時刻を過ぎた開催予定イベント", &Event{EndDate: &past, Status: StatusUpcoming}, true},
		{"終了時刻を過ぎたライブ中イベント", &Event{EndDate: &past, Status: StatusLive, IsLive: true}, true},
		{"既にcompleted", &Event{EndDate: &past, Status: StatusCompleted}, false},
		{"終了時刻が未来", &Event{EndDate: &future, Status: StatusUpcoming}, false},
		{"終了時刻が現在と同じ", &Event{EndDate: &now, Status: StatusUpcoming}, false},
		{"終了時刻なし", &Event{Status: StatusUpcoming}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.HasEnded(now))
		})
	}
}

func TestEvent_Complete(t *testing.T) {
	now := time.Now()
	e := &Event{Status: StatusLive, IsLive: true}

	e.Complete(now)

	assert.Equal(t, StatusCompleted, e.Status)
	assert.False(t, e.IsLive)
	assert.Equal(t, now, e.UpdatedAt)
	assert.False(t, e.HasEnded(now.Add(time.Hour)))
}

func TestPlatformEvent_HasEnded(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)

	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"upcoming は終了対象", StatusUpcoming, true},
		{"completed は対象外", StatusCompleted, false},
		{"ended は対象外", StatusEnded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PlatformEvent{EndDate: &past, Status: tt.status}
			assert.Equal(t, tt.expected, p.HasEnded(now))
		})
	}

	t.Run("End後は対象外になる", func(t *testing.T) {
		p := &PlatformEvent{EndDate: &past, Status: StatusUpcoming}
		p.End(now)
		assert.Equal(t, StatusEnded, p.Status)
		assert.False(t, p.HasEnded(now))
	})
}
