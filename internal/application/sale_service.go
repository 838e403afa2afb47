package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/organizer"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/payment"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/profile"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/sale"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/transaction"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/user"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/logger"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/pkg/metrics"
)

// WebhookDedupe は処理済みWebhookイベントの記録
// Claim は未処理のイベントを確保できたときだけ true を返す
type WebhookDedupe interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// VerifyResult は決済確認の結果
type VerifyResult struct {
	OK            bool   `json:"ok"`
	PaymentStatus string `json:"payment_status"`
}

// CheckoutRequest はチェックアウト作成の入力
type CheckoutRequest struct {
	TicketTypeID string `json:"ticketTypeId"`
	Quantity     int    `json:"quantity"`
	EventID      string `json:"eventId"`
}

// CheckoutResult はチェックアウト作成の結果
type CheckoutResult struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// SaleService はチケット販売の決済を扱う
type SaleService struct {
	saleRepo      sale.Repository
	ticketRepo    sale.TicketRepository
	organizerRepo organizer.Repository
	profileRepo   profile.Repository
	gateway       payment.Gateway
	txManager     transaction.Manager
	dedupe        WebhookDedupe
	metrics       *metrics.Metrics
	now           func() time.Time
}

// SaleServiceDeps はSaleServiceの依存
// Dedupe と Metrics は省略できる
type SaleServiceDeps struct {
	Sales      sale.Repository
	Tickets    sale.TicketRepository
	Organizers organizer.Repository
	Profiles   profile.Repository
	Gateway    payment.Gateway
	TxManager  transaction.Manager
	Dedupe     WebhookDedupe
	Metrics    *metrics.Metrics
}

func NewSaleService(d SaleServiceDeps) *SaleService {
	return &SaleService{
		saleRepo:      d.Sales,
		ticketRepo:    d.Tickets,
		organizerRepo: d.Organizers,
		profileRepo:   d.Profiles,
		gateway:       d.Gateway,
		txManager:     d.TxManager,
		dedupe:        d.Dedupe,
		metrics:       d.Metrics,
		now:           time.Now,
	}
}

// VerifyPayment はチェックアウトセッションの支払い状態を確認し、支払い済みなら販売を完了にする
// 他人の販売は更新も外部呼び出しもせずに拒否する
func (s *SaleService) VerifyPayment(ctx context.Context, caller *user.AuthUser, sessionID string) (*VerifyResult, error) {
	log := logger.Step("VERIFY-TICKET-PAYMENT")
	if sessionID == "" {
		return nil, sale.ErrSessionIDRequired
	}
	if caller.ID == "" || caller.Email == "" {
		return nil, user.ErrEmailNotAvailable
	}

	ts, err := s.saleRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		s.countVerification("error")
		return nil, err
	}
	if !ts.BelongsTo(caller.ID) {
		log.Warn("Sale ownership mismatch", zap.String("saleId", ts.ID), zap.String("userId", caller.ID))
		s.countVerification("forbidden")
		return nil, sale.ErrSaleNotOwned
	}
	log.Info("Sale loaded", zap.String("saleId", ts.ID), zap.String("status", string(ts.PaymentStatus)))

	if !ts.CanComplete() {
		return s.storedResult(ts), nil
	}

	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.countVerification("error")
		return nil, err
	}
	log.Info("Stripe session retrieved", zap.String("status", session.Status), zap.String("payment_status", session.PaymentStatus))

	if !session.IsPaid() {
		s.countVerification("unpaid")
		return &VerifyResult{OK: false, PaymentStatus: session.ReportedStatus()}, nil
	}

	if err := s.completeSale(ctx, ts, session.PaymentIntentID); err != nil {
		if !errors.Is(err, sale.ErrSaleNotCompletable) {
			s.countVerification("error")
			return nil, fmt.Errorf("Failed to update sale: %w", err)
		}
		// Webhookや返金が先に状態を変えた。保存済みの状態を返す
		current, err := s.saleRepo.GetByID(ctx, ts.ID)
		if err != nil {
			s.countVerification("error")
			return nil, err
		}
		log.Info("Sale changed concurrently", zap.String("saleId", ts.ID), zap.String("status", string(current.PaymentStatus)))
		return s.storedResult(current), nil
	}
	log.Info("Sale marked as completed", zap.String("saleId", ts.ID))

	s.countVerification("completed")
	return &VerifyResult{OK: true, PaymentStatus: string(sale.PaymentStatusCompleted)}, nil
}

// storedResult は決済APIを呼ばずに保存済みの状態を返す
func (s *SaleService) storedResult(ts *sale.TicketSale) *VerifyResult {
	if ts.IsCompleted() {
		s.countVerification("already_completed")
		return &VerifyResult{OK: true, PaymentStatus: string(sale.PaymentStatusCompleted)}
	}
	s.countVerification("not_completable")
	return &VerifyResult{OK: false, PaymentStatus: string(ts.PaymentStatus)}
}

// completeSale は販売の完了と販売数の加算を1トランザクションで行う
// 完了できる状態でなければ ErrSaleNotCompletable を返し、販売数は加算しない
func (s *SaleService) completeSale(ctx context.Context, ts *sale.TicketSale, paymentIntentID string) error {
	return transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		if err := s.saleRepo.MarkCompleted(ctx, tx, ts.ID, paymentIntentID, s.now()); err != nil {
			return err
		}
		return s.ticketRepo.IncrementSold(ctx, tx, ts.TicketTypeID, ts.Quantity)
	})
}

// CreateCheckout は販売レコードを作成し、主催者への送金付きチェックアウトセッションを発行する
func (s *SaleService) CreateCheckout(ctx context.Context, caller *user.AuthUser, in CheckoutRequest, origin string) (*CheckoutResult, error) {
	log := logger.Step("CREATE-TICKET-CHECKOUT")
	if caller.Email == "" {
		return nil, user.ErrEmailNotAvailable
	}
	if in.TicketTypeID == "" || in.Quantity <= 0 || in.EventID == "" {
		return nil, sale.ErrCheckoutParams
	}
	log.Info("Request received",
		zap.String("ticketTypeId", in.TicketTypeID), zap.Int("quantity", in.Quantity), zap.String("eventId", in.EventID))

	tt, err := s.ticketRepo.GetTicketType(ctx, in.TicketTypeID)
	if err != nil {
		return nil, err
	}
	if tt.EventID != in.EventID || !tt.IsActive {
		return nil, sale.ErrTicketTypeNotFound
	}

	org, err := s.organizerRepo.GetByID(ctx, tt.OrganizerID)
	if err != nil {
		return nil, err
	}
	if org.UserID == caller.ID {
		return nil, sale.ErrOwnEventPurchase
	}
	if !org.HasMerchantAccount() || !org.StripeChargesEnabled {
		return nil, sale.ErrPaymentsNotEnabled
	}

	settings, err := s.ticketRepo.GetSettings(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	fees := sale.CalculateFees(tt.Price, in.Quantity, *settings)
	log.Info("Fees calculated",
		zap.Float64("subtotal", fees.Subtotal),
		zap.Float64("platformFee", fees.PlatformFee),
		zap.Float64("processingFee", fees.ProcessingFee),
		zap.Float64("totalAmount", fees.Total),
		zap.Int64("applicationFeeAmount", fees.ApplicationFee),
		zap.String("feePayer", string(settings.FeePayer)),
	)

	customerID, err := s.gateway.FindOrCreateCustomer(ctx, payment.CustomerInput{Email: caller.Email, UserID: caller.ID})
	if err != nil {
		return nil, err
	}

	ts := sale.NewPendingSale(caller.ID, in.EventID, tt, in.Quantity, fees)
	ts.BuyerName = caller.Email
	ts.BuyerEmail = caller.Email
	if p, err := s.profileRepo.GetByUserID(ctx, caller.ID); err == nil {
		if p.DisplayName != nil && *p.DisplayName != "" {
			ts.BuyerName = *p.DisplayName
		}
		if p.Phone != nil {
			ts.BuyerPhone = *p.Phone
		}
	} else if !errors.Is(err, profile.ErrProfileNotFound) {
		log.Warn("Profile lookup failed", zap.Error(err))
	}

	if err := s.saleRepo.Create(ctx, ts); err != nil {
		return nil, fmt.Errorf("Failed to create sale record: %w", err)
	}
	log.Info("Sale record created", zap.String("saleId", ts.ID))

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutInput{
		CustomerID:         customerID,
		ProductName:        tt.Name + " - " + tt.EventTitle,
		ProductDescription: tt.Description,
		Amount:             sale.ToMinorUnits(fees.Total),
		ApplicationFee:     fees.ApplicationFee,
		DestinationAccount: org.StripeAccountID,
		SuccessURL:         origin + "/ticket-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          origin + "/event/" + in.EventID + "?payment=cancelled",
		Metadata: map[string]string{
			"ticket_sale_id": ts.ID,
			"event_id":       in.EventID,
			"user_id":        caller.ID,
			"organizer_id":   tt.OrganizerID,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.saleRepo.SetCheckoutSession(ctx, ts.ID, session.ID); err != nil {
		log.Error("Error updating sale with session ID", zap.Error(err))
	}
	log.Info("Checkout session created", zap.String("sessionId", session.ID))

	return &CheckoutResult{URL: session.URL, SessionID: session.ID}, nil
}

// HandleWebhook は署名を検証したWebhookイベントを販売状態に反映する
// 個々の更新失敗はログに残し、配信自体は成功として扱う
func (s *SaleService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	log := logger.Step("STRIPE-WEBHOOK")

	ev, err := s.gateway.ConstructWebhookEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			log.Warn("Webhook signature verification failed", zap.Error(err))
			s.countWebhook("unknown", "invalid_signature")
		}
		return err
	}
	log.Info("Event type received", zap.String("type", ev.Type), zap.String("id", ev.ID))

	claimed := false
	if s.dedupe != nil && ev.ID != "" {
		ok, err := s.dedupe.Claim(ctx, ev.ID)
		switch {
		case err != nil:
			log.Warn("Dedupe claim failed", zap.Error(err))
		case !ok:
			log.Info("Event already processed", zap.String("id", ev.ID))
			s.countWebhook(ev.Type, "duplicate")
			return nil
		default:
			claimed = true
		}
	}

	obj := gjson.ParseBytes(ev.Object)
	result := s.applyWebhook(ctx, log, ev.Type, obj)
	s.countWebhook(ev.Type, result)

	// 失敗したイベントは記録を残さず再配信を受け付ける
	if claimed && result == "error" {
		if err := s.dedupe.Release(ctx, ev.ID); err != nil {
			log.Warn("Dedupe release failed", zap.Error(err))
		}
	}
	return nil
}

func (s *SaleService) applyWebhook(ctx context.Context, log *zap.Logger, eventType string, obj gjson.Result) string {
	switch eventType {
	case "checkout.session.completed":
		log.Info("Processing checkout.session.completed", zap.String("sessionId", obj.Get("id").String()))
		saleID := obj.Get("metadata.ticket_sale_id").String()
		if saleID == "" {
			log.Info("No ticket_sale_id in metadata")
			return "ignored"
		}
		ts, err := s.saleRepo.GetByID(ctx, saleID)
		if err != nil {
			log.Error("Sale not found", zap.String("ticketSaleId", saleID), zap.Error(err))
			return "error"
		}
		if !ts.CanComplete() {
			log.Info("Sale not completable", zap.String("ticketSaleId", saleID), zap.String("status", string(ts.PaymentStatus)))
			return "ignored"
		}
		paid := obj.Get("payment_status").String() == "paid" || obj.Get("status").String() == "complete"
		if !paid {
			return "ignored"
		}
		if err := s.completeSale(ctx, ts, paymentIntentID(obj)); err != nil {
			if errors.Is(err, sale.ErrSaleNotCompletable) {
				log.Info("Sale not completable", zap.String("ticketSaleId", saleID))
				return "ignored"
			}
			log.Error("Error updating sale", zap.Error(err))
			return "error"
		}
		log.Info("Sale marked as completed", zap.String("ticketSaleId", saleID))
		return "processed"

	case "checkout.session.expired":
		log.Info("Processing checkout.session.expired", zap.String("sessionId", obj.Get("id").String()))
		saleID := obj.Get("metadata.ticket_sale_id").String()
		if saleID == "" {
			log.Info("No ticket_sale_id in metadata")
			return "ignored"
		}
		if _, err := s.saleRepo.MarkCancelled(ctx, saleID, s.now()); err != nil {
			log.Error("Error updating expired sale", zap.Error(err))
			return "error"
		}
		log.Info("Sale marked as cancelled", zap.String("ticketSaleId", saleID))
		return "processed"

	case "payment_intent.succeeded":
		log.Info("Processing payment_intent.succeeded", zap.String("paymentIntentId", obj.Get("id").String()))
		return "ignored"

	case "payment_intent.payment_failed":
		pi := obj.Get("id").String()
		log.Info("Processing payment_intent.payment_failed", zap.String("paymentIntentId", pi))
		if _, err := s.saleRepo.MarkFailedByPaymentIntent(ctx, pi); err != nil {
			log.Error("Error updating failed payment", zap.Error(err))
			return "error"
		}
		return "processed"

	case "charge.refunded":
		log.Info("Processing charge.refunded", zap.String("chargeId", obj.Get("id").String()))
		if _, err := s.saleRepo.MarkRefundedByPaymentIntent(ctx, paymentIntentID(obj), s.now()); err != nil {
			log.Error("Error updating refunded sale", zap.Error(err))
			return "error"
		}
		log.Info("Sale marked as refunded")
		return "processed"

	default:
		log.Info("Unhandled event type", zap.String("type", eventType))
		return "ignored"
	}
}

// paymentIntentID は展開済み・未展開のどちらの形式からもIDを取り出す
func paymentIntentID(obj gjson.Result) string {
	pi := obj.Get("payment_intent")
	if pi.IsObject() {
		return pi.Get("id").String()
	}
	return pi.String()
}

func (s *SaleService) countVerification(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.PaymentVerificationsTotal.WithLabelValues(result).Inc()
}

func (s *SaleService) countWebhook(eventType, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.PaymentWebhooksTotal.WithLabelValues(eventType, result).Inc()
}
