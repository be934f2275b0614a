package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/tawseel/internal/address"
	"github.com/dukerupert/tawseel/internal/cache"
	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/masterdata"
	"github.com/dukerupert/tawseel/internal/storefront"
)

func newTestTransformer(source masterdata.Source) *Transformer {
	sf := &storefront.MockClient{
		GetStoreProfileFunc: func(ctx context.Context, shopKey string) (*storefront.StoreProfile, error) {
			return stubProfile(), nil
		},
	}
	parser := address.NewParser(nil)
	resolver := masterdata.NewResolver(source, nil)
	pickups := NewPickupResolver(sf, parser, resolver, cache.NewMemory(), PickupDefaults{}, nil)
	return NewTransformer(parser, resolver, pickups, TransformConfig{}, nil)
}

func stubOrder() *domain.SourceOrder {
	return &domain.SourceOrder{
		ID:              4521930572,
		Name:            "#1001",
		Currency:        "BHD",
		TotalPrice:      "12.500",
		FinancialStatus: "pending",
		Customer: &domain.SourceCustomer{
			FirstName: "Fatima",
			LastName:  "Ahmed",
			Phone:     "+97333000000",
		},
		ShippingAddress: &domain.SourceAddress{
			FirstName: "Fatima",
			LastName:  "Ahmed",
			Address1:  "Building: 2733, Road: 3953,",
			Address2:  "Flat 21",
			City:      "Al Hajiyat",
			Zip:       "939",
			Phone:     "+97333000000",
		},
		LineItems: []domain.SourceLineItem{
			{Title: "Baklava box", Quantity: 2, Price: "6.250", Grams: 500},
		},
	}
}

func TestTransform_AssemblesCourierOrder(t *testing.T) {
	tr := newTestTransformer(stubSource())

	out, err := tr.Transform(context.Background(), stubOrder(), testShop)
	require.NoError(t, err)

	assert.Equal(t, "DELIVERY", out.OrderType)
	assert.Equal(t, "NEXT_DAY", out.ServiceType)
	assert.Equal(t, "#1001", out.Reference)

	assert.Equal(t, int64(12), out.Destination.BlockID)
	assert.Equal(t, int64(52), out.Destination.RoadID)
	assert.Equal(t, int64(73), out.Destination.BuildingID)
	assert.Equal(t, "Building 73, Road 52, Block 12, Flat 21", out.Destination.Address)
	assert.Equal(t, "Fatima Ahmed", out.Destination.Name)
	assert.Equal(t, "+97333000000", out.Destination.Phone)

	assert.Equal(t, int64(12), out.Pickup.BlockID)
	assert.Equal(t, "Manama Sweets", out.Pickup.Name)

	require.Len(t, out.Packages, 1)
	assert.Equal(t, "Baklava box", out.Packages[0].Description)
	assert.Equal(t, 2, out.Packages[0].Quantity)
	assert.Equal(t, 1, out.Packages[0].WeightKg)
	assert.Equal(t, int64(13), out.Packages[0].Value)

	assert.True(t, out.IsCOD)
	assert.Equal(t, "12.5", out.CODAmount.String())
}

func TestTransform_BillingAddressFallback(t *testing.T) {
	tr := newTestTransformer(stubSource())
	order := stubOrder()
	order.BillingAddress = order.ShippingAddress
	order.ShippingAddress = nil

	out, err := tr.Transform(context.Background(), order, testShop)

	require.NoError(t, err)
	assert.Equal(t, int64(12), out.Destination.BlockID)
}

func TestTransform_NoAddressIsHardError(t *testing.T) {
	tr := newTestTransformer(stubSource())
	order := stubOrder()
	order.ShippingAddress = nil
	order.BillingAddress = nil

	_, err := tr.Transform(context.Background(), order, testShop)

	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestTransform_PhonePlaceholder(t *testing.T) {
	tr := newTestTransformer(stubSource())
	order := stubOrder()
	order.ShippingAddress.Phone = ""
	order.Customer = nil

	out, err := tr.Transform(context.Background(), order, testShop)

	require.NoError(t, err)
	assert.Equal(t, defaultPhone, out.Destination.Phone)
}

func TestTransform_UnresolvedComponentsFallBackToRawNumbers(t *testing.T) {
	// Master data knows the pickup road but not the destination's road
	// 3953, so the building must not resolve either; the destination
	// address string keeps the raw numbers. Pickup resolution stays
	// strict, so the store profile uses a road the courier knows.
	source := stubSource()
	source.ListRoadsFunc = func(ctx context.Context, blockID int64, search string) ([]masterdata.Record, error) {
		if search == "100" {
			return []masterdata.Record{{ID: 7, Code: "100", Name: "Road 100"}}, nil
		}
		return nil, nil
	}
	sf := &storefront.MockClient{
		GetStoreProfileFunc: func(ctx context.Context, shopKey string) (*storefront.StoreProfile, error) {
			profile := stubProfile()
			profile.Address1 = "Building: 2733, Road: 100,"
			return profile, nil
		},
	}
	parser := address.NewParser(nil)
	resolver := masterdata.NewResolver(source, nil)
	pickups := NewPickupResolver(sf, parser, resolver, cache.NewMemory(), PickupDefaults{}, nil)
	tr := NewTransformer(parser, resolver, pickups, TransformConfig{}, nil)

	out, err := tr.Transform(context.Background(), stubOrder(), testShop)

	require.NoError(t, err)
	assert.Equal(t, int64(12), out.Destination.BlockID)
	assert.Zero(t, out.Destination.RoadID)
	assert.Zero(t, out.Destination.BuildingID)
	assert.Equal(t, "Building 2733, Road 3953, Block 12, Flat 21", out.Destination.Address)
}

func TestTransform_Instructions(t *testing.T) {
	tests := []struct {
		name        string
		orderNote   string
		addressNote string
		want        string
	}{
		{"order note wins", "leave at the gate", "ring twice", "leave at the gate"},
		{"address note second", "", "ring twice", "ring twice"},
		{"generic default last", "", "", defaultInstructions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTransformer(stubSource())
			order := stubOrder()
			order.Note = tt.orderNote
			order.ShippingAddress.Note = tt.addressNote

			out, err := tr.Transform(context.Background(), order, testShop)

			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Instructions)
		})
	}
}

func TestInferCOD(t *testing.T) {
	tests := []struct {
		name            string
		financialStatus string
		gateway         string
		gatewayNames    []string
		want            bool
	}{
		{"pending with no hints defaults to COD", "pending", "", nil, true},
		{"pending with cod gateway", "pending", "Cash on Delivery (COD)", nil, true},
		{"authorized with cod gateway name", "authorized", "", []string{"cash_on_delivery"}, true},
		{"pending with card gateway is prepaid", "pending", "credit_card", nil, false},
		{"paid is never COD", "paid", "", nil, false},
		{"paid with cod gateway is still prepaid", "paid", "cod", nil, false},
		{"refunded is not COD", "refunded", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &domain.SourceOrder{
				FinancialStatus:     tt.financialStatus,
				Gateway:             tt.gateway,
				PaymentGatewayNames: tt.gatewayNames,
			}
			assert.Equal(t, tt.want, InferCOD(order))
		})
	}
}

func TestBuildPackages_WeightAndValueFloors(t *testing.T) {
	lines := []domain.SourceLineItem{
		{Title: "Feather", Quantity: 1, Price: "0.100"},              // no weight data, tiny value
		{Title: "Sack", Quantity: 3, Price: "2.000", Grams: 2000},    // 6 kg total
		{Title: "Scale weight", Quantity: 1, Price: "4.500", Weight: 2.4}, // explicit weight field
	}

	packages := buildPackages(lines)
	require.Len(t, packages, 3)

	// 0.5 kg fallback floored up to the 1 kg minimum; value floored to 1.
	assert.Equal(t, 1, packages[0].WeightKg)
	assert.Equal(t, int64(1), packages[0].Value)

	assert.Equal(t, 6, packages[1].WeightKg)
	assert.Equal(t, int64(6), packages[1].Value)

	assert.Equal(t, 2, packages[2].WeightKg)
	assert.Equal(t, int64(5), packages[2].Value)
}
