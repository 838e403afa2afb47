package user

// Role はアプリケーションのロール
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// AuthUser は認証済みの呼び出し元
type AuthUser struct {
	ID    string
	Email string
}
