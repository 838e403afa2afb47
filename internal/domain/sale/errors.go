package sale

import "errors"

// Sale ドメインのエラー定義
// メッセージはそのままAPIレスポンスに載る
var (
	ErrSessionIDRequired    = errors.New("Missing required parameter: sessionId")
	ErrSaleNotFound         = errors.New("Sale not found for provided sessionId")
	ErrSaleNotOwned         = errors.New("Sale does not belong to current user")
	ErrCheckoutParams       = errors.New("Missing required parameters: ticketTypeId, quantity, eventId")
	ErrTicketTypeNotFound   = errors.New("Ticket type not found")
	ErrSettingsNotFound     = errors.New("Ticket settings not found for this event")
	ErrOwnEventPurchase     = errors.New("Organizadores não podem comprar ingressos dos próprios eventos")
	ErrPaymentsNotEnabled   = errors.New("Este organizador ainda não configurou pagamentos. Entre em contato com o organizador.")
	ErrSaleNotCompletable   = errors.New("販売は支払い完了にできる状態ではありません")
)
