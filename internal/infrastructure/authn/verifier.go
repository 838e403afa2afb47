package authn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/config"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
)

var (
	ErrInvalidToken  = errors.New("invalid JWT")
	ErrNotConfigured = errors.New("auth endpoint is not configured")
)

// Verifier はアクセストークンを検証して呼び出し元を特定する
// JWTシークレットがあればローカルで検証し、失敗時は認証サービスに問い合わせる
type Verifier struct {
	baseURL   string
	anonKey   string
	jwtSecret []byte
	client    *http.Client
}

// NewVerifier は新しいVerifierを作成する
func NewVerifier(cfg *config.SupabaseConfig) *Verifier {
	return &Verifier{
		baseURL:   cfg.URL,
		anonKey:   cfg.AnonKey,
		jwtSecret: []byte(cfg.JWTSecret),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify はトークンを検証する
func (v *Verifier) Verify(ctx context.Context, token string) (*user.AuthUser, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	if len(v.jwtSecret) > 0 {
		if u, err := v.verifyLocal(token); err == nil {
			return u, nil
		}
	}
	return v.verifyRemote(ctx, token)
}

// verifyLocal は exp の無いトークンを受け付けない
func (v *Verifier) verifyLocal(token string) (*user.AuthUser, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return &user.AuthUser{ID: sub, Email: email}, nil
}

func (v *Verifier) verifyRemote(ctx context.Context, token string) (*user.AuthUser, error) {
	if v.baseURL == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.anonKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("認証サービスへの問い合わせに失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "msg").String()
		if msg == "" {
			msg = gjson.GetBytes(body, "message").String()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, errors.New(msg)
	}

	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return nil, ErrInvalidToken
	}
	return &user.AuthUser{ID: id, Email: gjson.GetBytes(body, "email").String()}, nil
}
