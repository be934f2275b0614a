package storefront

import (
	"context"

	"github.com/dukerupert/tawseel/internal/domain"
)

// MockClient is a test double for Client.
type MockClient struct {
	GetStoreProfileFunc func(ctx context.Context, shopKey string) (*StoreProfile, error)
	GetOrderFunc        func(ctx context.Context, shopKey string, orderID int64) (*domain.SourceOrder, error)
	ListOrdersFunc      func(ctx context.Context, shopKey string, opts OrderListOptions) ([]*domain.SourceOrder, error)

	ProfileCalls int
	OrderCalls   int
	ListCalls    int
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) GetStoreProfile(ctx context.Context, shopKey string) (*StoreProfile, error) {
	m.ProfileCalls++
	if m.GetStoreProfileFunc != nil {
		return m.GetStoreProfileFunc(ctx, shopKey)
	}
	return &StoreProfile{Name: "Mock Shop"}, nil
}

func (m *MockClient) GetOrder(ctx context.Context, shopKey string, orderID int64) (*domain.SourceOrder, error) {
	m.OrderCalls++
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, shopKey, orderID)
	}
	return nil, domain.NotFound("storefront.get_order", "order", "mock")
}

func (m *MockClient) ListOrders(ctx context.Context, shopKey string, opts OrderListOptions) ([]*domain.SourceOrder, error) {
	m.ListCalls++
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, shopKey, opts)
	}
	return nil, nil
}

// MockSessionStore is a test double for SessionStore.
type MockSessionStore struct {
	GetSessionFunc    func(ctx context.Context, shopKey string) (*Session, error)
	DeleteSessionFunc func(ctx context.Context, shopKey string) error
}

var _ SessionStore = (*MockSessionStore)(nil)

func (m *MockSessionStore) GetSession(ctx context.Context, shopKey string) (*Session, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, shopKey)
	}
	return &Session{Shop: shopKey, AccessToken: "mock-token"}, nil
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, shopKey string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, shopKey)
	}
	return nil
}
