package viewstate

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/event"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/profile"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/domain/social"
	"github.com/natanaelribeiro272-glitch/meetlines-sub002/internal/realtime"
)

// MockFriendshipRepository implements social.FriendshipRepository
type MockFriendshipRepository struct {
	mock.Mock
}

func (m *MockFriendshipRepository) FindBetween(ctx context.Context, a, b string) (*social.Friendship, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*social.Friendship), args.Error(1)
}

func (m *MockFriendshipRepository) CreateRequest(ctx context.Context, userID, friendID string) (*social.Friendship, error) {
	args := m.Called(ctx, userID, friendID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*social.Friendship), args.Error(1)
}

func (m *MockFriendshipRepository) DeleteBetween(ctx context.Context, a, b string) (int64, error) {
	args := m.Called(ctx, a, b)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFriendshipRepository) AcceptRequest(ctx context.Context, friendshipID, requesterID, addresseeID string) error {
	args := m.Called(ctx, friendshipID, requesterID, addresseeID)
	return args.Error(0)
}

func (m *MockFriendshipRepository) DeclineRequest(ctx context.Context, friendshipID, requesterID, addresseeID string) error {
	args := m.Called(ctx, friendshipID, requesterID, addresseeID)
	return args.Error(0)
}

// MockFollowerRepository implements social.FollowerRepository
type MockFollowerRepository struct {
	mock.Mock
}

func (m *MockFollowerRepository) IsFollowing(ctx context.Context, userID, organizerID string) (bool, error) {
	args := m.Called(ctx, userID, organizerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowerRepository) Follow(ctx context.Context, userID, organizerID string) error {
	args := m.Called(ctx, userID, organizerID)
	return args.Error(0)
}

func (m *MockFollowerRepository) Unfollow(ctx context.Context, userID, organizerID string) error {
	args := m.Called(ctx, userID, organizerID)
	return args.Error(0)
}

// MockFeedRepository implements event.FeedRepository
type MockFeedRepository struct {
	mock.Mock
}

func (m *MockFeedRepository) ListUpcoming(ctx context.Context, category, viewerID string) ([]*event.Listing, error) {
	args := m.Called(ctx, category, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Listing), args.Error(1)
}

func (m *MockFeedRepository) ListUpcomingPlatform(ctx context.Context, category string) ([]*event.Listing, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Listing), args.Error(1)
}

func (m *MockFeedRepository) ToggleLike(ctx context.Context, eventID, userID string) (bool, int, error) {
	args := m.Called(ctx, eventID, userID)
	return args.Bool(0), args.Int(1), args.Error(2)
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

// recordingNotifier は通知を記録する
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(message string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

// fakeSubscriber は任意の変更を流し込める購読元
type fakeSubscriber struct {
	mu           sync.Mutex
	ch           chan realtime.Change
	filter        realtime.Filter
	subscriptions int
	unsubscribed  bool
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{ch: make(chan realtime.Change, 16)}
}

func (s *fakeSubscriber) Subscribe(filter realtime.Filter) (<-chan realtime.Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
	s.subscriptions++
	return s.ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.unsubscribed = true
	}
}

func (s *fakeSubscriber) subscriptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions
}

func (s *fakeSubscriber) isUnsubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribed
}

// stubMessageRepository は未読数を返すスタブ
type stubMessageRepository struct {
	mu    sync.Mutex
	count int
	calls int
}

func (r *stubMessageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.count, nil
}

func (r *stubMessageRepository) set(n int) {
	r.mu.Lock()
	r.count = n
	r.mu.Unlock()
}

func (r *stubMessageRepository) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
