package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/social"
)

type friendshipRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	FriendID  string    `db:"friend_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *friendshipRow) toEntity() *social.Friendship {
	return &social.Friendship{
		ID:        r.ID,
		UserID:    r.UserID,
		FriendID:  r.FriendID,
		Status:    social.FriendshipStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// FriendshipRepository は友達関係リポジトリのPostgreSQL実装
type FriendshipRepository struct {
	db *sqlx.DB
}

// NewFriendshipRepository はFriendshipRepositoryを作成する
func NewFriendshipRepository(db *sqlx.DB) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// FindBetween は2人のユーザー間の関係を方向を問わず取得する
func (r *FriendshipRepository) FindBetween(ctx context.Context, a, b string) (*social.Friendship, error) {
	query := `
		SELECT id, user_id, friend_id, status, created_at
		FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		ORDER BY created_at DESC
		LIMIT 1
	`
	var row friendshipRow
	if err := r.db.GetContext(ctx, &row, query, a, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, social.ErrFriendshipNotFound
		}
		return nil, fmt.Errorf("友達関係取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// CreateRequest は pending の友達申請を作成する
func (r *FriendshipRepository) CreateRequest(ctx context.Context, userID, friendID string) (*social.Friendship, error) {
	query := `
		INSERT INTO friendships (user_id, friend_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, user_id, friend_id, status, created_at
	`
	var row friendshipRow
	if err := r.db.GetContext(ctx, &row, query, userID, friendID); err != nil {
		if isUniqueViolation(err) {
			return nil, social.ErrFriendshipExists
		}
		return nil, fmt.Errorf("友達申請の作成に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// DeleteBetween は2人のユーザー間の関係を両方向とも削除する
func (r *FriendshipRepository) DeleteBetween(ctx context.Context, a, b string) (int64, error) {
	query := `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	result, err := r.db.ExecContext(ctx, query, a, b)
	if err != nil {
		return 0, fmt.Errorf("友達関係の削除に失敗: %w", err)
	}
	return result.RowsAffected()
}

// AcceptRequest は対象の申請1件だけを accepted にする
func (r *FriendshipRepository) AcceptRequest(ctx context.Context, friendshipID, requesterID, addresseeID string) error {
	query := `
		UPDATE friendships
		SET status = 'accepted'
		WHERE id = $1 AND user_id = $2 AND friend_id = $3 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, friendshipID, requesterID, addresseeID)
	if err != nil {
		return fmt.Errorf("友達申請の承認に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return social.ErrFriendRequestNotFound
	}
	return nil
}

// DeclineRequest は対象の申請1件だけを削除する
func (r *FriendshipRepository) DeclineRequest(ctx context.Context, friendshipID, requesterID, addresseeID string) error {
	query := `
		DELETE FROM friendships
		WHERE id = $1 AND user_id = $2 AND friend_id = $3 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, friendshipID, requesterID, addresseeID)
	if err != nil {
		return fmt.Errorf("友達申請の拒否に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return social.ErrFriendRequestNotFound
	}
	return nil
}

// FollowerRepository はフォロー関係リポジトリのPostgreSQL実装
type FollowerRepository struct {
	db *sqlx.DB
}

// NewFollowerRepository はFollowerRepositoryを作成する
func NewFollowerRepository(db *sqlx.DB) *FollowerRepository {
	return &FollowerRepository{db: db}
}

// IsFollowing はユーザーが主催者をフォローしているかを返す
func (r *FollowerRepository) IsFollowing(ctx context.Context, userID, organizerID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM followers WHERE user_id = $1 AND organizer_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, userID, organizerID); err != nil {
		return false, fmt.Errorf("フォロー状態の取得に失敗: %w", err)
	}
	return exists, nil
}

// Follow はフォロー関係を作成する
func (r *FollowerRepository) Follow(ctx context.Context, userID, organizerID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO followers (user_id, organizer_id) VALUES ($1, $2)`, userID, organizerID)
	if err != nil {
		if isUniqueViolation(err) {
			return social.ErrAlreadyFollowing
		}
		return fmt.Errorf("フォローに失敗: %w", err)
	}
	return nil
}

// Unfollow はフォロー関係を削除する
func (r *FollowerRepository) Unfollow(ctx context.Context, userID, organizerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM followers WHERE user_id = $1 AND organizer_id = $2`, userID, organizerID)
	if err != nil {
		return fmt.Errorf("フォロー解除に失敗: %w", err)
	}
	return nil
}

// MessageRepository はメッセージリポジトリのPostgreSQL実装
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository はMessageRepositoryを作成する
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CountUnread はユーザー宛ての未読メッセージ数を返す
func (r *MessageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_messages WHERE to_user_id = $1 AND read = false`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("未読数の取得に失敗: %w", err)
	}
	return count, nil
}

var (
	_ social.FriendshipRepository = (*FriendshipRepository)(nil)
	_ social.FollowerRepository   = (*FollowerRepository)(nil)
	_ social.MessageRepository    = (*MessageRepository)(nil)
)
