package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukerupert/tawseel/internal/address"
	"github.com/dukerupert/tawseel/internal/cache"
	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/masterdata"
	"github.com/dukerupert/tawseel/internal/storefront"
)

// PickupDefaults fill in contact fields the store profile may lack.
type PickupDefaults struct {
	ContactName  string
	ContactPhone string
}

// PickupResolver computes and caches the merchant's pickup location
// from the shop's configured store address. Pickup resolution is
// stricter than destination resolution: the merchant's own address must
// carry both a block and a road number, and a missing block is a
// configuration error for the operator to fix, never something to guess.
type PickupResolver struct {
	storefront storefront.Client
	parser     *address.Parser
	resolver   *masterdata.Resolver
	cache      cache.PickupCache
	defaults   PickupDefaults
	logger     *slog.Logger
}

// NewPickupResolver creates a pickup resolver.
func NewPickupResolver(
	sf storefront.Client,
	parser *address.Parser,
	resolver *masterdata.Resolver,
	pickupCache cache.PickupCache,
	defaults PickupDefaults,
	logger *slog.Logger,
) *PickupResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &PickupResolver{
		storefront: sf,
		parser:     parser,
		resolver:   resolver,
		cache:      pickupCache,
		defaults:   defaults,
		logger:     logger.With("component", "pickup_resolver"),
	}
}

// GetPickupLocation returns the shop's pickup location, resolving and
// caching it on first use. Cache entries have no TTL; EvictShop or
// Flush must be called when the merchant's store address changes.
func (r *PickupResolver) GetPickupLocation(ctx context.Context, shopKey string) (*domain.PickupLocation, error) {
	logger := r.logger.With("shop", shopKey)

	cached, err := r.cache.Get(ctx, shopKey)
	if err != nil {
		// Cache trouble degrades to a miss; resolution still works.
		logger.Warn("pickup cache read failed", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	profile, err := r.storefront.GetStoreProfile(ctx, shopKey)
	if err != nil {
		return nil, err
	}
	if !profile.HasAddress() {
		return nil, domain.Invalid("pickup.resolve",
			"store has no address configured; set the store address in the storefront admin")
	}

	numbers := r.parser.Parse(address.Fields{
		Line1:      profile.Address1,
		Line2:      profile.Address2,
		City:       profile.City,
		PostalCode: profile.Zip,
	})
	if numbers == nil {
		return nil, domain.Invalid("pickup.resolve",
			"store address has no block number; add one to the store address in the storefront admin")
	}
	if !numbers.HasRoad() {
		return nil, domain.Invalid("pickup.resolve",
			"store address has no road number; pickup requires a fully specified address")
	}

	hint := address.AreaHint(profile.Address2, profile.City)
	ids, err := r.resolver.ConvertNumbersToIDs(ctx, *numbers, hint)
	if err != nil {
		return nil, err
	}
	if ids.RoadID == 0 {
		// Destination resolution may degrade to raw numbers, pickup may
		// not: the courier dispatches drivers from this address on every
		// order, and a misconfigured store address is the merchant's to fix.
		return nil, domain.Invalid("pickup.resolve",
			fmt.Sprintf("road %d not found in courier master data for block %d; check the store address", numbers.Road, numbers.Block))
	}

	contactName := profile.Name
	if contactName == "" {
		contactName = r.defaults.ContactName
	}
	contactPhone := profile.Phone
	if contactPhone == "" {
		contactPhone = r.defaults.ContactPhone
	}

	loc := &domain.PickupLocation{
		ShopKey:      shopKey,
		Address:      courierAddress(ids, *numbers),
		BlockID:      ids.BlockID,
		RoadID:       ids.RoadID,
		BuildingID:   ids.BuildingID,
		Block:        numbers.Block,
		Road:         numbers.Road,
		Building:     numbers.Building,
		Flat:         numbers.Flat,
		ContactName:  contactName,
		ContactPhone: contactPhone,
	}

	if err := r.cache.Set(ctx, shopKey, loc); err != nil {
		logger.Warn("pickup cache write failed", "error", err)
	}

	logger.Info("pickup location resolved",
		"block_id", loc.BlockID,
		"road_id", loc.RoadID,
		"building_id", loc.BuildingID)
	return loc, nil
}

// EvictShop removes the cached pickup location for one shop. Called on
// app uninstall and on store address changes.
func (r *PickupResolver) EvictShop(ctx context.Context, shopKey string) error {
	if err := r.cache.Delete(ctx, shopKey); err != nil {
		return fmt.Errorf("failed to evict pickup cache for %s: %w", shopKey, err)
	}
	return nil
}

// Flush clears all cached pickup locations. Administrative reset.
func (r *PickupResolver) Flush(ctx context.Context) error {
	return r.cache.Flush(ctx)
}
