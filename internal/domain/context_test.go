package domain

import (
	"context"
	"testing"
)

func TestShopContext(t *testing.T) {
	t.Run("ShopFromContext returns nil when no shop", func(t *testing.T) {
		ctx := context.Background()
		shop := ShopFromContext(ctx)
		if shop != nil {
			t.Errorf("expected nil shop, got %+v", shop)
		}
	})

	t.Run("ShopFromContext returns shop when set", func(t *testing.T) {
		ctx := context.Background()
		expected := &Shop{
			Key:  "manama-sweets.myshopify.com",
			Name: "Manama Sweets",
		}
		ctx = NewContextWithShop(ctx, expected)

		shop := ShopFromContext(ctx)
		if shop == nil {
			t.Fatal("expected shop, got nil")
		}
		if shop.Key != expected.Key {
			t.Errorf("expected Key %q, got %q", expected.Key, shop.Key)
		}
	})

	t.Run("ShopKeyFromContext returns empty string when no shop", func(t *testing.T) {
		ctx := context.Background()
		if key := ShopKeyFromContext(ctx); key != "" {
			t.Errorf("expected empty key, got %q", key)
		}
	})

	t.Run("MustShop panics when no shop", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic, got none")
			}
		}()
		MustShop(context.Background())
	})

	t.Run("MustShop returns shop when set", func(t *testing.T) {
		expected := &Shop{Key: "manama-sweets.myshopify.com"}
		ctx := NewContextWithShop(context.Background(), expected)
		if shop := MustShop(ctx); shop.Key != expected.Key {
			t.Errorf("expected %q, got %q", expected.Key, shop.Key)
		}
	})
}

func TestRequestIDContext(t *testing.T) {
	t.Run("returns empty string when unset", func(t *testing.T) {
		if id := RequestIDFromContext(context.Background()); id != "" {
			t.Errorf("expected empty request ID, got %q", id)
		}
	})

	t.Run("round-trips the request ID", func(t *testing.T) {
		ctx := NewContextWithRequestID(context.Background(), "req-123")
		if id := RequestIDFromContext(ctx); id != "req-123" {
			t.Errorf("expected %q, got %q", "req-123", id)
		}
	})
}
