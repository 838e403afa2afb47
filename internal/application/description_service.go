package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/description"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/metrics"
)

// DescriptionService はAIでイベント説明文を生成する
// 管理者ロールの確認はルート側のミドルウェアで行う
type DescriptionService struct {
	generator description.Generator
	metrics   *metrics.Metrics
}

func NewDescriptionService(g description.Generator, m *metrics.Metrics) *DescriptionService {
	return &DescriptionService{generator: g, metrics: m}
}

// Generate はイベント情報から説明文を生成する
func (s *DescriptionService) Generate(ctx context.Context, req description.Request) (string, error) {
	logger.Info("説明文を生成します", zap.String("title", req.Title))

	text, err := s.generator.Complete(ctx, description.SystemPrompt, req.UserPrompt())
	if err != nil {
		switch {
		case errors.Is(err, description.ErrRateLimited):
			s.count("rate_limited")
		case errors.Is(err, description.ErrCreditsExhausted):
			s.count("payment_required")
		default:
			s.count("error")
		}
		return "", err
	}

	s.count("success")
	return text, nil
}

func (s *DescriptionService) count(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.AIGenerationsTotal.WithLabelValues(result).Inc()
}
