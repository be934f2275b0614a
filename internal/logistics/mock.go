package logistics

import (
	"context"
)

// MockProvider is a test implementation of Provider.
type MockProvider struct {
	EstimateShippingFunc func(ctx context.Context, order *Order) (*Estimate, error)
	CreateOrderFunc      func(ctx context.Context, order *Order) (*CreateResult, error)
	TrackOrderFunc       func(ctx context.Context, providerOrderID string) (*TrackingInfo, error)

	// Call counters for asserting external-call behavior.
	EstimateCalls int
	CreateCalls   int
	TrackCalls    int
}

// EstimateShipping delegates to the configured function or returns a zero estimate.
func (m *MockProvider) EstimateShipping(ctx context.Context, order *Order) (*Estimate, error) {
	m.EstimateCalls++
	if m.EstimateShippingFunc != nil {
		return m.EstimateShippingFunc(ctx, order)
	}
	return &Estimate{}, nil
}

// CreateOrder delegates to the configured function or returns a fixed ID.
func (m *MockProvider) CreateOrder(ctx context.Context, order *Order) (*CreateResult, error) {
	m.CreateCalls++
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, order)
	}
	return &CreateResult{OrderID: "mock-order-1"}, nil
}

// TrackOrder delegates to the configured function or returns an empty status.
func (m *MockProvider) TrackOrder(ctx context.Context, providerOrderID string) (*TrackingInfo, error) {
	m.TrackCalls++
	if m.TrackOrderFunc != nil {
		return m.TrackOrderFunc(ctx, providerOrderID)
	}
	return &TrackingInfo{OrderID: providerOrderID}, nil
}
