package application

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/event"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/organizer"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/payment"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/profile"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/sale"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/transaction"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockEventRepository implements event.Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) ListEnded(ctx context.Context, now time.Time) ([]*event.Event, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) MarkCompleted(ctx context.Context, ids []string, now time.Time) (int64, error) {
	args := m.Called(ctx, ids, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) ListEndedPlatform(ctx context.Context, now time.Time) ([]*event.PlatformEvent, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.PlatformEvent), args.Error(1)
}

func (m *MockEventRepository) MarkPlatformEnded(ctx context.Context, ids []string, now time.Time) (int64, error) {
	args := m.Called(ctx, ids, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrganizerRepository implements organizer.Repository
type MockOrganizerRepository struct {
	mock.Mock
}

func (m *MockOrganizerRepository) GetByUserID(ctx context.Context, userID string) (*organizer.Organizer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organizer.Organizer), args.Error(1)
}

func (m *MockOrganizerRepository) GetByID(ctx context.Context, id string) (*organizer.Organizer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organizer.Organizer), args.Error(1)
}

func (m *MockOrganizerRepository) SetMerchantAccount(ctx context.Context, id, accountID string, connectedAt time.Time) error {
	args := m.Called(ctx, id, accountID, connectedAt)
	return args.Error(0)
}

func (m *MockOrganizerRepository) UpdateCapabilities(ctx context.Context, id string, caps organizer.Capabilities) error {
	args := m.Called(ctx, id, caps)
	return args.Error(0)
}

// MockSaleRepository implements sale.Repository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, s *sale.TicketSale) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSaleRepository) GetByID(ctx context.Context, id string) (*sale.TicketSale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.TicketSale), args.Error(1)
}

func (m *MockSaleRepository) GetBySessionID(ctx context.Context, sessionID string) (*sale.TicketSale, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.TicketSale), args.Error(1)
}

func (m *MockSaleRepository) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *MockSaleRepository) MarkCompleted(ctx context.Context, tx transaction.Tx, id, paymentIntentID string, paidAt time.Time) error {
	args := m.Called(ctx, tx, id, paymentIntentID, paidAt)
	return args.Error(0)
}

func (m *MockSaleRepository) MarkCancelled(ctx context.Context, id string, cancelledAt time.Time) (int64, error) {
	args := m.Called(ctx, id, cancelledAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) MarkRefundedByPaymentIntent(ctx context.Context, paymentIntentID string, refundedAt time.Time) (int64, error) {
	args := m.Called(ctx, paymentIntentID, refundedAt)
	return args.Get(0).(int64), args.Error(1)
}

// MockTicketRepository implements sale.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) GetTicketType(ctx context.Context, id string) (*sale.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.TicketType), args.Error(1)
}

func (m *MockTicketRepository) GetSettings(ctx context.Context, eventID string) (*sale.Settings, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Settings), args.Error(1)
}

func (m *MockTicketRepository) IncrementSold(ctx context.Context, tx transaction.Tx, ticketTypeID string, quantity int) error {
	args := m.Called(ctx, tx, ticketTypeID, quantity)
	return args.Error(0)
}

// MockProfileRepository implements profile.Repository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, userID string, u profile.Update) (*profile.Profile, error) {
	args := m.Called(ctx, userID, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

// MockGateway implements payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateExpressAccount(ctx context.Context, in payment.CreateAccountInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	args := m.Called(ctx, accountID, refreshURL, returnURL)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) GetAccount(ctx context.Context, accountID string) (*payment.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Account), args.Error(1)
}

func (m *MockGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, in payment.CheckoutInput) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

func (m *MockGateway) FindOrCreateCustomer(ctx context.Context, in payment.CustomerInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ConstructWebhookEvent(payload []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

// MockGenerator implements description.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockDedupe implements WebhookDedupe
type MockDedupe struct {
	mock.Mock
}

func (m *MockDedupe) Claim(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDedupe) Release(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// memoryLocker はキーごとのミューテックスで Locker を再現する
type memoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *memoryLocker) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.locks[key]; !ok {
		l.locks[key] = &sync.Mutex{}
	}
	return l.locks[key]
}

func (l *memoryLocker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	m := l.get(key)
	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

func (l *memoryLocker) TryWithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error) {
	m := l.get(key)
	if !m.TryLock() {
		return false, nil
	}
	defer m.Unlock()
	return true, fn(ctx)
}
