package domain

import "context"

// MockLedger is a test double for Ledger.
type MockLedger struct {
	FindFunc       func(ctx context.Context, shop string, sourceOrderID int64) (*OrderLogEntry, error)
	UpsertFunc     func(ctx context.Context, entry *OrderLogEntry) error
	ListByShopFunc func(ctx context.Context, shop string, limit int) ([]OrderLogEntry, error)
	DeleteShopFunc func(ctx context.Context, shop string) error

	FindCalls   int
	UpsertCalls int
	Upserts     []OrderLogEntry
}

var _ Ledger = (*MockLedger)(nil)

func (m *MockLedger) Find(ctx context.Context, shop string, sourceOrderID int64) (*OrderLogEntry, error) {
	m.FindCalls++
	if m.FindFunc != nil {
		return m.FindFunc(ctx, shop, sourceOrderID)
	}
	return nil, nil
}

func (m *MockLedger) Upsert(ctx context.Context, entry *OrderLogEntry) error {
	m.UpsertCalls++
	m.Upserts = append(m.Upserts, *entry)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, entry)
	}
	return nil
}

func (m *MockLedger) ListByShop(ctx context.Context, shop string, limit int) ([]OrderLogEntry, error) {
	if m.ListByShopFunc != nil {
		return m.ListByShopFunc(ctx, shop, limit)
	}
	return nil, nil
}

func (m *MockLedger) DeleteShop(ctx context.Context, shop string) error {
	if m.DeleteShopFunc != nil {
		return m.DeleteShopFunc(ctx, shop)
	}
	return nil
}
