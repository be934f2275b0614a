package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dukerupert/tawseel/internal/domain"
)

const pickupKeyPrefix = "tawseel:pickup:"

// Redis is a PickupCache backed by a redis instance, for deployments
// running more than one server replica.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

var _ PickupCache = (*Redis)(nil)

// NewRedis creates a redis-backed pickup cache.
func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{
		client: client,
		logger: logger.With("component", "pickup_cache"),
	}
}

func (r *Redis) Get(ctx context.Context, shopKey string) (*domain.PickupLocation, error) {
	data, err := r.client.Get(ctx, pickupKeyPrefix+shopKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Unavailable(err, "cache.get", "pickup cache unreachable")
	}

	var loc domain.PickupLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		// A corrupt entry is treated as a miss so the resolver rebuilds it.
		r.logger.Warn("dropping corrupt pickup cache entry", "shop", shopKey, "error", err)
		return nil, nil
	}
	return &loc, nil
}

func (r *Redis) Set(ctx context.Context, shopKey string, loc *domain.PickupLocation) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return domain.Internal(err, "cache.set", "failed to encode pickup location")
	}
	if err := r.client.Set(ctx, pickupKeyPrefix+shopKey, data, 0).Err(); err != nil {
		return domain.Unavailable(err, "cache.set", "pickup cache unreachable")
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, shopKey string) error {
	if err := r.client.Del(ctx, pickupKeyPrefix+shopKey).Err(); err != nil {
		return domain.Unavailable(err, "cache.delete", "pickup cache unreachable")
	}
	return nil
}

func (r *Redis) Flush(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, pickupKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return domain.Unavailable(err, "cache.flush", "pickup cache unreachable")
		}
	}
	if err := iter.Err(); err != nil {
		return domain.Unavailable(err, "cache.flush", "pickup cache scan failed")
	}
	return nil
}
