package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/tawseel/internal/address"
	"github.com/dukerupert/tawseel/internal/cache"
	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/logistics"
	"github.com/dukerupert/tawseel/internal/masterdata"
	"github.com/dukerupert/tawseel/internal/queue"
	"github.com/dukerupert/tawseel/internal/service"
	"github.com/dukerupert/tawseel/internal/storefront"
)

func newTestProcessor(ledger *domain.MockLedger, provider *logistics.MockProvider) *service.Processor {
	source := &masterdata.MockSource{
		ListBlocksFunc: func(ctx context.Context, search string) ([]masterdata.Record, error) {
			return []masterdata.Record{{ID: 12, Code: "939", Name: "Block 939"}}, nil
		},
		ListRoadsFunc: func(ctx context.Context, blockID int64, search string) ([]masterdata.Record, error) {
			return []masterdata.Record{{ID: 52, Code: "3953", Name: "Road 3953"}}, nil
		},
	}
	sf := &storefront.MockClient{
		GetStoreProfileFunc: func(ctx context.Context, shopKey string) (*storefront.StoreProfile, error) {
			return &storefront.StoreProfile{
				Name:     "Manama Sweets",
				Phone:    "+97317000000",
				Address1: "Block 939, Road 3953",
				City:     "Manama",
			}, nil
		},
	}
	parser := address.NewParser(nil)
	resolver := masterdata.NewResolver(source, nil)
	pickups := service.NewPickupResolver(sf, parser, resolver, cache.NewMemory(), service.PickupDefaults{}, nil)
	transformer := service.NewTransformer(parser, resolver, pickups, service.TransformConfig{}, nil)
	return service.NewProcessor(ledger, transformer, provider, source, time.Millisecond, nil)
}

func testOrder(id int64) *domain.SourceOrder {
	return &domain.SourceOrder{
		ID:              id,
		Name:            "#1001",
		Currency:        "BHD",
		TotalPrice:      "12.500",
		FinancialStatus: "pending",
		ShippingAddress: &domain.SourceAddress{
			Name:     "Fatima Ahmed",
			Address1: "Block 939, Road 3953",
			City:     "Manama",
			Phone:    "+97333000000",
		},
		LineItems: []domain.SourceLineItem{{Title: "Baklava box", Quantity: 1, Price: "12.500", Grams: 500}},
	}
}

func TestWorker_ProcessesQueuedOrders(t *testing.T) {
	ledger := &domain.MockLedger{}
	provider := &logistics.MockProvider{}
	q := queue.NewMemory(8, nil)
	defer q.Close()
	w := NewWorker(q, newTestProcessor(ledger, provider), Config{WorkerID: "test-worker"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	require.NoError(t, q.Publish(ctx, queue.Task{Shop: "sweets.example.com", Order: testOrder(1)}))
	require.NoError(t, q.Publish(ctx, queue.Task{Shop: "sweets.example.com", Order: testOrder(2)}))

	require.Eventually(t, func() bool {
		return provider.CreateCalls == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestWorker_DropsTaskWithoutOrder(t *testing.T) {
	ledger := &domain.MockLedger{}
	provider := &logistics.MockProvider{}
	q := queue.NewMemory(8, nil)
	defer q.Close()
	w := NewWorker(q, newTestProcessor(ledger, provider), Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	require.NoError(t, q.Publish(ctx, queue.Task{Shop: "sweets.example.com"}))
	require.NoError(t, q.Publish(ctx, queue.Task{Shop: "sweets.example.com", Order: testOrder(3)}))

	require.Eventually(t, func() bool {
		return provider.CreateCalls == 1
	}, 2*time.Second, 10*time.Millisecond)
}
