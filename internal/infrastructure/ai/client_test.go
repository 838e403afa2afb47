package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/config"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/description"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.AIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1", Model: "google/gemini-2.5-flash"})
}

func TestClient_Complete(t *testing.T) {
	t.Run("先頭の回答をトリムして返す", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var body struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "google/gemini-2.5-flash", body.Model)
			require.Len(t, body.Messages, 2)
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Equal(t, "user", body.Messages[1].Role)
			assert.Equal(t, "olá", body.Messages[1].Content)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Uma noite inesquecível 🎉  "}}]}`))
		})

		text, err := c.Complete(context.Background(), "sys", "olá")

		require.NoError(t, err)
		assert.Equal(t, "Uma noite inesquecível 🎉", text)
	})

	t.Run("空の回答はErrNoDescription", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
		})

		_, err := c.Complete(context.Background(), "sys", "olá")

		assert.ErrorIs(t, err, description.ErrNoDescription)
	})
}

func TestClient_Complete_UpstreamStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"429はErrRateLimited", http.StatusTooManyRequests, `{"error":{"message":"rate limited","type":"rate_limit"}}`, description.ErrRateLimited},
		{"402はErrCreditsExhausted", http.StatusPaymentRequired, `{"error":{"message":"payment required","type":"billing"}}`, description.ErrCreditsExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Complete(context.Background(), "sys", "olá")

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("その他のエラーはラップして返す", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"boom"}}`))
		})

		_, err := c.Complete(context.Background(), "sys", "olá")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "AI API request failed")
		assert.NotErrorIs(t, err, description.ErrRateLimited)
	})
}

func TestClient_NoAPIKey(t *testing.T) {
	c := NewClient(&config.AIConfig{})

	_, err := c.Complete(context.Background(), "sys", "olá")

	assert.ErrorIs(t, err, description.ErrAPIKeyMissing)
}
