package sale

import (
	"math"
	"time"
)

// PaymentStatus はチケット販売の支払い状態
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// TicketSale はチケット販売レコード
type TicketSale struct {
	ID                      string
	UserID                  string
	EventID                 string
	TicketTypeID            string
	Quantity                int
	UnitPrice               float64
	Subtotal                float64
	PlatformFee             float64
	PaymentProcessingFee    float64
	TotalAmount             float64
	BuyerName               string
	BuyerEmail              string
	BuyerPhone              string
	PaymentStatus           PaymentStatus
	StripeCheckoutSessionID string
	StripePaymentIntentID   string
	PaidAt                  *time.Time
	CancelledAt             *time.Time
	RefundedAt              *time.Time
	CreatedAt               time.Time
}

// IsCompleted は支払い完了済みかを返す
func (s *TicketSale) IsCompleted() bool {
	return s.PaymentStatus == PaymentStatusCompleted
}

// CanComplete は支払い完了に遷移できるかを返す
// failed は同じセッションでの再決済があり得るため完了を許す。cancelled と refunded は終端
func (s *TicketSale) CanComplete() bool {
	return s.PaymentStatus == PaymentStatusPending || s.PaymentStatus == PaymentStatusFailed
}

// BelongsTo は購入者が指定ユーザーかを返す
func (s *TicketSale) BelongsTo(userID string) bool {
	return userID != "" && s.UserID == userID
}

// TicketType はイベントのチケット種別
type TicketType struct {
	ID           string
	EventID      string
	EventTitle   string
	OrganizerID  string
	Name         string
	Description  string
	Price        float64
	QuantitySold int
	IsActive     bool
}

// FeePayer は手数料の負担者
type FeePayer string

const (
	FeePayerBuyer     FeePayer = "buyer"
	FeePayerOrganizer FeePayer = "organizer"
)

// Settings はイベントごとのチケット手数料設定
type Settings struct {
	EventID                        string
	PlatformFeePercentage          float64
	PaymentProcessingFeePercentage float64
	PaymentProcessingFeeFixed      float64
	FeePayer                       FeePayer
}

// Fees は購入時に計算される金額一式
type Fees struct {
	Subtotal       float64
	PlatformFee    float64
	ProcessingFee  float64
	Total          float64
	ApplicationFee int64 // プラットフォームが受け取る額（センタボ単位）
}

// CalculateFees は単価と枚数から手数料と合計を計算する
// 購入者負担の場合のみ合計に手数料を加算する
func CalculateFees(unitPrice float64, quantity int, s Settings) Fees {
	subtotal := unitPrice * float64(quantity)
	platformFee := subtotal * (s.PlatformFeePercentage / 100)
	processingFee := subtotal*(s.PaymentProcessingFeePercentage/100) +
		s.PaymentProcessingFeeFixed*float64(quantity)

	total := subtotal
	if s.FeePayer == FeePayerBuyer {
		total = subtotal + platformFee + processingFee
	}

	return Fees{
		Subtotal:       subtotal,
		PlatformFee:    platformFee,
		ProcessingFee:  processingFee,
		Total:          total,
		ApplicationFee: ToMinorUnits(platformFee + processingFee),
	}
}

// ToMinorUnits は金額を最小通貨単位に丸める
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// NewPendingSale は支払い待ちの販売レコードを作成する
func NewPendingSale(userID, eventID string, tt *TicketType, quantity int, fees Fees) *TicketSale {
	return &TicketSale{
		UserID:               userID,
		EventID:              eventID,
		TicketTypeID:         tt.ID,
		Quantity:             quantity,
		UnitPrice:            tt.Price,
		Subtotal:             fees.Subtotal,
		PlatformFee:          fees.PlatformFee,
		PaymentProcessingFee: fees.ProcessingFee,
		TotalAmount:          fees.Total,
		PaymentStatus:        PaymentStatusPending,
		CreatedAt:            time.Now(),
	}
}
