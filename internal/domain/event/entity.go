package event

import "time"

// Status はイベントの状態を表す
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
)

// Kind はイベントの種類を表す
type Kind string

const (
	KindEvent    Kind = "event"
	KindPlatform Kind = "platform_event"
)

// Event は主催者が作成する通常イベント
type Event struct {
	ID          string
	Title       string
	Description string
	Category    string
	Location    string
	OrganizerID string
	EventDate   time.Time
	EndDate     *time.Time
	Status      Status
	IsLive      bool
	TicketPrice float64
	TicketLink  string
	UpdatedAt   time.Time
}

// HasEnded は終了時刻を過ぎていて、まだ終了状態でないかを返す
func (e *Event) HasEnded(now time.Time) bool {
	if e.EndDate == nil || !e.EndDate.Before(now) {
		return false
	}
	return e.Status != StatusCompleted
}

// Complete はイベントを終了状態にする
func (e *Event) Complete(now time.Time) {
	e.Status = StatusCompleted
	e.IsLive = false
	e.UpdatedAt = now
}

// PlatformEvent は運営が登録する外部イベント
type PlatformEvent struct {
	ID            string
	Title         string
	Description   string
	Category      string
	Location      string
	OrganizerName string
	EventDate     time.Time
	EndDate       *time.Time
	Status        Status
	TicketPrice   float64
	TicketLink    string
	UpdatedAt     time.Time
}

// HasEnded は終了時刻を過ぎていて、completed / ended のどちらでもないかを返す
func (p *PlatformEvent) HasEnded(now time.Time) bool {
	if p.EndDate == nil || !p.EndDate.Before(now) {
		return false
	}
	return p.Status != StatusCompleted && p.Status != StatusEnded
}

// End はプラットフォームイベントを終了状態にする
func (p *PlatformEvent) End(now time.Time) {
	p.Status = StatusEnded
	p.UpdatedAt = now
}

// ClosedEvent は自動終了処理で状態を変更したイベントの要約
type ClosedEvent struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	EndDate *time.Time `json:"end_date"`
	Kind    Kind       `json:"kind"`
}
