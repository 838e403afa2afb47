package event

import (
	"sort"
	"strings"
	"time"
)

// Listing はフィード表示用のイベント（通常イベントとプラットフォームイベントの共通形）
type Listing struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description,omitempty"`
	Category             string    `json:"category,omitempty"`
	Location             string    `json:"location"`
	EventDate            time.Time `json:"event_date"`
	Status               Status    `json:"status"`
	IsLive               bool      `json:"is_live"`
	OrganizerID          string    `json:"organizer_id"`
	OrganizerUserID      string    `json:"organizer_user_id,omitempty"`
	OrganizerPageTitle   string    `json:"organizer_page_title"`
	OrganizerDisplayName string    `json:"organizer_display_name,omitempty"`
	TicketPrice          float64   `json:"ticket_price,omitempty"`
	TicketLink           string    `json:"ticket_link,omitempty"`
	HasPaidTickets       bool      `json:"has_paid_tickets"`
	IsPlatformEvent      bool      `json:"is_platform_event"`
	LikesCount           int       `json:"likes_count"`
	IsLiked              bool      `json:"is_liked"`
}

// PlatformOrganizerID はプラットフォームイベントの主催者IDとして使う固定値
const PlatformOrganizerID = "platform"

// FeedFilter はフィード取得条件
type FeedFilter struct {
	// Category が空または "todos" の場合は絞り込まない
	Category  string
	Search    string
	Interests []string
}

// CategoryFilter はクエリに渡すカテゴリを返す（絞り込みなしは空文字）
func (f FeedFilter) CategoryFilter() string {
	if f.Category == "todos" {
		return ""
	}
	return f.Category
}

// interestCategories は興味からカテゴリへの対応表
var interestCategories = map[string][]string{
	"balada":     {"festas", "eletronica", "funk"},
	"lives":      {"musica", "eletronica", "rock", "pop"},
	"encontros":  {"networking", "gastronomia"},
	"shows":      {"rock", "pop", "sertanejo", "jazz"},
	"festas":     {"festas", "funk", "samba"},
	"networking": {"vendas", "networking"},
	"esportes":   {"esportes"},
	"cultura":    {"arte", "jazz", "outros"},
}

// CategoriesForInterests は興味に対応するカテゴリ集合を返す
func CategoriesForInterests(interests []string) map[string]struct{} {
	categories := make(map[string]struct{})
	for _, interest := range interests {
		for _, c := range interestCategories[interest] {
			categories[c] = struct{}{}
		}
	}
	return categories
}

// FilterByInterests は興味に合うイベントだけを残す
// カテゴリ未設定のイベントは常に残す
func FilterByInterests(listings []*Listing, interests []string) []*Listing {
	if len(interests) == 0 {
		return listings
	}
	categories := CategoriesForInterests(interests)

	filtered := make([]*Listing, 0, len(listings))
	for _, l := range listings {
		if l.Category == "" {
			filtered = append(filtered, l)
			continue
		}
		if _, ok := categories[l.Category]; ok {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// SortListings は有料チケットありのイベントを先頭にし、その中で開催日時順に並べる
func SortListings(listings []*Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if a.HasPaidTickets != b.HasPaidTickets {
			return a.HasPaidTickets
		}
		return a.EventDate.Before(b.EventDate)
	})
}

// Search はタイトル・説明・主催者名・場所・カテゴリを大文字小文字を区別せずに検索する
func Search(listings []*Listing, query string) []*Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return listings
	}

	matched := make([]*Listing, 0, len(listings))
	for _, l := range listings {
		for _, field := range []string{l.Title, l.Description, l.OrganizerPageTitle, l.OrganizerDisplayName, l.Location, l.Category} {
			if field != "" && strings.Contains(strings.ToLower(field), q) {
				matched = append(matched, l)
				break
			}
		}
	}
	return matched
}
