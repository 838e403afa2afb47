package description

import "errors"

// 説明文生成のエラー定義
// メッセージはそのままAPIレスポンスに載る
var (
	ErrAPIKeyMissing    = errors.New("LOVABLE_API_KEY not configured")
	ErrRateLimited      = errors.New("Limite de requisições excedido. Tente novamente em alguns segundos.")
	ErrCreditsExhausted = errors.New("Créditos de IA esgotados. Adicione créditos ao workspace.")
	ErrNoDescription    = errors.New("No description generated")
)
