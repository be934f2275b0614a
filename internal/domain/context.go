// Package domain provides core business types and context helpers for Tawseel.
//
// Context helpers centralize request-scoped data access so shop identity
// flows through the processing pipeline without global state.
package domain

import (
	"context"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// shopContextKey stores the shop identity in context.
	shopContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// Shop represents the storefront identity a request is scoped to.
// The Key is the myshopify-style domain used as the ledger and cache key.
type Shop struct {
	Key  string
	Name string
}

// --- Shop Context Helpers ---

// NewContextWithShop returns a new context with the shop attached.
func NewContextWithShop(ctx context.Context, shop *Shop) context.Context {
	return context.WithValue(ctx, shopContextKey, shop)
}

// ShopFromContext retrieves the shop from context.
// Returns nil if no shop is present.
func ShopFromContext(ctx context.Context) *Shop {
	shop, _ := ctx.Value(shopContextKey).(*Shop)
	return shop
}

// ShopKeyFromContext retrieves the shop key from context.
// Returns empty string if no shop is present.
func ShopKeyFromContext(ctx context.Context) string {
	if shop := ShopFromContext(ctx); shop != nil {
		return shop.Key
	}
	return ""
}

// MustShop retrieves the shop from context, panicking if not present.
// Use this in service layers where shop scoping is required.
// The panic will be caught by error recovery middleware in HTTP handlers.
func MustShop(ctx context.Context) *Shop {
	shop := ShopFromContext(ctx)
	if shop == nil {
		panic("shop required in context but not found")
	}
	return shop
}

// --- Request ID Context Helpers ---

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}

// HasShop returns true if there is a shop in context.
func HasShop(ctx context.Context) bool {
	return ShopFromContext(ctx) != nil
}
