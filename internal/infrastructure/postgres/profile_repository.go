package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/profile"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
)

type profileRow struct {
	ID                 string    `db:"id"`
	UserID             string    `db:"user_id"`
	Username           *string   `db:"username"`
	DisplayName        *string   `db:"display_name"`
	Bio                *string   `db:"bio"`
	Location           *string   `db:"location"`
	AvatarURL          *string   `db:"avatar_url"`
	Phone              *string   `db:"phone"`
	Website            *string   `db:"website"`
	InstagramURL       *string   `db:"instagram_url"`
	FindFriendsVisible *bool     `db:"find_friends_visible"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (r *profileRow) toEntity() *profile.Profile {
	return &profile.Profile{
		ID:                 r.ID,
		UserID:             r.UserID,
		Username:           r.Username,
		DisplayName:        r.DisplayName,
		Bio:                r.Bio,
		Location:           r.Location,
		AvatarURL:          r.AvatarURL,
		Phone:              r.Phone,
		Website:            r.Website,
		InstagramURL:       r.InstagramURL,
		FindFriendsVisible: r.FindFriendsVisible,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

const profileColumns = `id, user_id, username, display_name, bio, location, avatar_url,
	phone, website, instagram_url, find_friends_visible, created_at, updated_at`

// ProfileRepository はプロフィールリポジトリのPostgreSQL実装
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository はProfileRepositoryを作成する
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID はユーザーIDからプロフィールを取得する
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*profile.Profile, error) {
	var row profileRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, fmt.Errorf("プロフィール取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// Update はプロフィールを部分更新し、更新後の行を返す
func (r *ProfileRepository) Update(ctx context.Context, userID string, update profile.Update) (*profile.Profile, error) {
	cols := update.Columns()
	if len(cols) == 0 {
		return nil, profile.ErrEmptyUpdate
	}

	// クエリを安定させるためカラム名でソートする
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]interface{}, 0, len(names)+1)
	for i, name := range names {
		sets = append(sets, fmt.Sprintf("%s = $%d", name, i+1))
		args = append(args, cols[name])
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE user_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), profileColumns)

	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, fmt.Errorf("プロフィール更新に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// RoleRepository はロール判定のPostgreSQL実装
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository はRoleRepositoryを作成する
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// HasRole はDB関数 has_role でロールを判定する
func (r *RoleRepository) HasRole(ctx context.Context, userID string, role user.Role) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, `SELECT has_role($1::uuid, $2::app_role)`, userID, string(role)); err != nil {
		return false, fmt.Errorf("ロール判定に失敗: %w", err)
	}
	return ok, nil
}

var (
	_ profile.Repository  = (*ProfileRepository)(nil)
	_ user.RoleRepository = (*RoleRepository)(nil)
)
