package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/config"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/description"
)

// Client はOpenAI互換のAIゲートウェイクライアント
type Client struct {
	api   *openai.Client
	model string
}

// NewClient は設定からクライアントを作成する
// APIキー未設定でも生成でき、呼び出し時にエラーを返す
func NewClient(cfg *config.AIConfig) *Client {
	c := &Client{model: cfg.Model}
	if cfg.APIKey == "" {
		return c
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RequestTimeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	} else {
		oc.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	c.api = openai.NewClientWithConfig(oc)
	return c
}

// Complete はシステム・ユーザーメッセージからチャット補完を行い、先頭の回答を返す
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.api == nil {
		return "", description.ErrAPIKeyMissing
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", description.ErrNoDescription
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", description.ErrNoDescription
	}
	return text, nil
}

// mapError はHTTPステータスをドメインエラーに変換する
func mapError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return description.ErrRateLimited
	case http.StatusPaymentRequired:
		return description.ErrCreditsExhausted
	case 0:
		return fmt.Errorf("AI API request failed: %w", err)
	default:
		return fmt.Errorf("AI API request failed: %s: %w", http.StatusText(status), err)
	}
}

var _ description.Generator = (*Client)(nil)
