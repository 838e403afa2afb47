package profile

import "time"

// Profile はユーザープロフィール
type Profile struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Username           *string   `json:"username"`
	DisplayName        *string   `json:"display_name"`
	Bio                *string   `json:"bio"`
	Location           *string   `json:"location"`
	AvatarURL          *string   `json:"avatar_url"`
	Phone              *string   `json:"phone"`
	Website            *string   `json:"website"`
	InstagramURL       *string   `json:"instagram_url"`
	FindFriendsVisible *bool     `json:"find_friends_visible"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Update はプロフィールの部分更新（nil のフィールドは変更しない）
type Update struct {
	Username           *string `json:"username,omitempty"`
	DisplayName        *string `json:"display_name,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	Location           *string `json:"location,omitempty"`
	AvatarURL          *string `json:"avatar_url,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	Website            *string `json:"website,omitempty"`
	InstagramURL       *string `json:"instagram_url,omitempty"`
	FindFriendsVisible *bool   `json:"find_friends_visible,omitempty"`
}

// IsEmpty は更新対象のフィールドがないかを返す
func (u Update) IsEmpty() bool {
	return u.Username == nil && u.DisplayName == nil && u.Bio == nil &&
		u.Location == nil && u.AvatarURL == nil && u.Phone == nil &&
		u.Website == nil && u.InstagramURL == nil && u.FindFriendsVisible == nil
}

// Columns は更新するカラム名と値を返す
func (u Update) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Username != nil {
		cols["username"] = *u.Username
	}
	if u.DisplayName != nil {
		cols["display_name"] = *u.DisplayName
	}
	if u.Bio != nil {
		cols["bio"] = *u.Bio
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	if u.AvatarURL != nil {
		cols["avatar_url"] = *u.AvatarURL
	}
	if u.Phone != nil {
		cols["phone"] = *u.Phone
	}
	if u.Website != nil {
		cols["website"] = *u.Website
	}
	if u.InstagramURL != nil {
		cols["instagram_url"] = *u.InstagramURL
	}
	if u.FindFriendsVisible != nil {
		cols["find_friends_visible"] = *u.FindFriendsVisible
	}
	return cols
}
