package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/event"
)

// endedEventRow は終了対象イベントの行
type endedEventRow struct {
	ID      string     `db:"id"`
	Title   string     `db:"title"`
	EndDate *time.Time `db:"end_date"`
	Status  string     `db:"status"`
}

// listingRow はフィード表示用の行
type listingRow struct {
	ID                   string    `db:"id"`
	Title                string    `db:"title"`
	Description          string    `db:"description"`
	Category             string    `db:"category"`
	Location             string    `db:"location"`
	EventDate            time.Time `db:"event_date"`
	Status               string    `db:"status"`
	IsLive               bool      `db:"is_live"`
	OrganizerID          string    `db:"organizer_id"`
	OrganizerUserID      string    `db:"organizer_user_id"`
	OrganizerPageTitle   string    `db:"organizer_page_title"`
	OrganizerDisplayName string    `db:"organizer_display_name"`
	TicketPrice          float64   `db:"ticket_price"`
	TicketLink           string    `db:"ticket_link"`
	HasPaidTickets       bool      `db:"has_paid_tickets"`
	LikesCount           int       `db:"likes_count"`
	IsLiked              bool      `db:"is_liked"`
}

func (r *listingRow) toEntity(platform bool) *event.Listing {
	return &event.Listing{
		ID:                   r.ID,
		Title:                r.Title,
		Description:          r.Description,
		Category:             r.Category,
		Location:             r.Location,
		EventDate:            r.EventDate,
		Status:               event.Status(r.Status),
		IsLive:               r.IsLive,
		OrganizerID:          r.OrganizerID,
		OrganizerUserID:      r.OrganizerUserID,
		OrganizerPageTitle:   r.OrganizerPageTitle,
		OrganizerDisplayName: r.OrganizerDisplayName,
		TicketPrice:          r.TicketPrice,
		TicketLink:           r.TicketLink,
		HasPaidTickets:       r.HasPaidTickets,
		IsPlatformEvent:      platform,
		LikesCount:           r.LikesCount,
		IsLiked:              r.IsLiked,
	}
}

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListEnded は終了時刻を過ぎた未完了の通常イベントを取得する
func (r *EventRepository) ListEnded(ctx context.Context, now time.Time) ([]*event.Event, error) {
	query := `
		SELECT id, title, end_date, status
		FROM events
		WHERE end_date IS NOT NULL AND end_date < $1 AND status <> 'completed'
		ORDER BY end_date ASC
	`
	var rows []endedEventRow
	if err := r.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("終了対象イベントの取得に失敗: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = &event.Event{
			ID:      row.ID,
			Title:   row.Title,
			EndDate: row.EndDate,
			Status:  event.Status(row.Status),
		}
	}
	return events, nil
}

// MarkCompleted は指定した通常イベントを completed にする
// 状態条件を再度付けることで、並行実行時も二重に更新しない
func (r *EventRepository) MarkCompleted(ctx context.Context, ids []string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `
		UPDATE events
		SET status = 'completed', is_live = false, updated_at = $1
		WHERE id = ANY($2) AND status <> 'completed'
	`
	result, err := r.db.ExecContext(ctx, query, now, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("イベントの終了処理に失敗: %w", err)
	}
	return result.RowsAffected()
}

// ListEndedPlatform は終了時刻を過ぎた未終了のプラットフォームイベントを取得する
func (r *EventRepository) ListEndedPlatform(ctx context.Context, now time.Time) ([]*event.PlatformEvent, error) {
	query := `
		SELECT id, title, end_date, status
		FROM platform_events
		WHERE end_date IS NOT NULL AND end_date < $1 AND status NOT IN ('completed', 'ended')
		ORDER BY end_date ASC
	`
	var rows []endedEventRow
	if err := r.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("終了対象プラットフォームイベントの取得に失敗: %w", err)
	}

	events := make([]*event.PlatformEvent, len(rows))
	for i, row := range rows {
		events[i] = &event.PlatformEvent{
			ID:      row.ID,
			Title:   row.Title,
			EndDate: row.EndDate,
			Status:  event.Status(row.Status),
		}
	}
	return events, nil
}

// MarkPlatformEnded は指定したプラットフォームイベントを ended にする
func (r *EventRepository) MarkPlatformEnded(ctx context.Context, ids []string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `
		UPDATE platform_events
		SET status = 'ended', updated_at = $1
		WHERE id = ANY($2) AND status NOT IN ('completed', 'ended')
	`
	result, err := r.db.ExecContext(ctx, query, now, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("プラットフォームイベントの終了処理に失敗: %w", err)
	}
	return result.RowsAffected()
}

// ListUpcoming は開催予定の通常イベントを主催者情報・いいね状態付きで取得する
func (r *EventRepository) ListUpcoming(ctx context.Context, category, viewerID string) ([]*event.Listing, error) {
	query := `
		SELECT
			e.id, e.title,
			COALESCE(e.description, '') AS description,
			COALESCE(e.category, '') AS category,
			COALESCE(e.location, '') AS location,
			e.event_date, e.status, e.is_live, e.organizer_id,
			o.user_id AS organizer_user_id,
			COALESCE(o.page_title, '') AS organizer_page_title,
			COALESCE(p.display_name, '') AS organizer_display_name,
			COALESCE(e.ticket_price, 0) AS ticket_price,
			COALESCE(e.ticket_link, '') AS ticket_link,
			(
				EXISTS (SELECT 1 FROM ticket_types t WHERE t.event_id = e.id AND t.is_active AND t.price > 0)
				OR COALESCE(e.ticket_price, 0) > 0
				OR COALESCE(e.ticket_link, '') <> ''
			) AS has_paid_tickets,
			(SELECT COUNT(*) FROM event_likes l WHERE l.event_id = e.id) AS likes_count,
			EXISTS (
				SELECT 1 FROM event_likes l
				WHERE l.event_id = e.id AND $2::text <> '' AND l.user_id::text = $2::text
			) AS is_liked
		FROM events e
		JOIN organizers o ON o.id = e.organizer_id
		LEFT JOIN profiles p ON p.user_id = o.user_id
		WHERE e.status = 'upcoming' AND ($1::text = '' OR e.category = $1::text)
		ORDER BY e.event_date ASC
	`
	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, query, category, viewerID); err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗: %w", err)
	}

	listings := make([]*event.Listing, len(rows))
	for i := range rows {
		listings[i] = rows[i].toEntity(false)
	}
	return listings, nil
}

// ListUpcomingPlatform は開催予定のプラットフォームイベントを取得する
func (r *EventRepository) ListUpcomingPlatform(ctx context.Context, category string) ([]*event.Listing, error) {
	query := `
		SELECT
			id, title,
			COALESCE(description, '') AS description,
			COALESCE(category, '') AS category,
			COALESCE(location, '') AS location,
			event_date, status,
			false AS is_live,
			'platform' AS organizer_id,
			'platform' AS organizer_user_id,
			COALESCE(organizer_name, '') AS organizer_page_title,
			COALESCE(organizer_name, '') AS organizer_display_name,
			COALESCE(ticket_price, 0) AS ticket_price,
			COALESCE(ticket_link, '') AS ticket_link,
			(COALESCE(ticket_price, 0) > 0 OR COALESCE(ticket_link, '') <> '') AS has_paid_tickets,
			0 AS likes_count,
			false AS is_liked
		FROM platform_events
		WHERE status = 'upcoming' AND ($1::text = '' OR category = $1::text)
		ORDER BY event_date ASC
	`
	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, query, category); err != nil {
		return nil, fmt.Errorf("プラットフォームイベント一覧の取得に失敗: %w", err)
	}

	listings := make([]*event.Listing, len(rows))
	for i := range rows {
		listings[i] = rows[i].toEntity(true)
	}
	return listings, nil
}

// ToggleLike はいいねを切り替え、切り替え後の状態といいね数を返す
func (r *EventRepository) ToggleLike(ctx context.Context, eventID, userID string) (bool, int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM event_likes WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("いいねの削除に失敗: %w", err)
	}
	removed, _ := result.RowsAffected()

	liked := false
	if removed == 0 {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO event_likes (event_id, user_id) VALUES ($1, $2)`, eventID, userID); err != nil {
			var pgErr *pq.Error
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return false, 0, event.ErrEventNotFound
			}
			return false, 0, fmt.Errorf("いいねの追加に失敗: %w", err)
		}
		liked = true
	}

	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM event_likes WHERE event_id = $1`, eventID); err != nil {
		return false, 0, fmt.Errorf("いいね数の取得に失敗: %w", err)
	}
	return liked, count, nil
}

var (
	_ event.Repository     = (*EventRepository)(nil)
	_ event.FeedRepository = (*EventRepository)(nil)
)
