package description

import "context"

// Generator はチャット補完APIで文章を生成する
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
