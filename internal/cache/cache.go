// Package cache caches resolved pickup locations per shop. Entries
// have no TTL; they are evicted explicitly when a shop uninstalls or
// through an administrative flush.
package cache

import (
	"context"

	"github.com/dukerupert/tawseel/internal/domain"
)

// PickupCache stores resolved pickup locations keyed by shop.
// Get returns (nil, nil) when the shop has no cached entry.
type PickupCache interface {
	Get(ctx context.Context, shopKey string) (*domain.PickupLocation, error)
	Set(ctx context.Context, shopKey string, loc *domain.PickupLocation) error
	Delete(ctx context.Context, shopKey string) error
	Flush(ctx context.Context) error
}
