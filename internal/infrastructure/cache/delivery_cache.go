package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"shopbridge/internal/ports"
)

// DefaultDeliveryTTL is how long a delivery id is remembered. Shopify stops
// retrying a delivery well inside this window.
const DefaultDeliveryTTL = 24 * time.Hour

const deliveryKeyPrefix = "shopbridge:webhook:delivery:"

// RedisDeliveryCache suppresses duplicate webhook deliveries by the platform
// delivery id. It is best-effort: callers dispatch normally when it errors.
type RedisDeliveryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisDeliveryCache creates a delivery cache with the default TTL.
func NewRedisDeliveryCache(client *redis.Client, logger zerolog.Logger) *RedisDeliveryCache {
	return NewRedisDeliveryCacheWithTTL(client, DefaultDeliveryTTL, logger)
}

// NewRedisDeliveryCacheWithTTL creates a delivery cache with an explicit TTL.
func NewRedisDeliveryCacheWithTTL(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisDeliveryCache {
	return &RedisDeliveryCache{client: client, ttl: ttl, logger: logger}
}

// SeenDelivery marks id as seen and reports whether it already was. SETNX
// makes the mark-and-check a single atomic round trip.
func (c *RedisDeliveryCache) SeenDelivery(ctx context.Context, id string) (bool, error) {
	stored, err := c.client.SetNX(ctx, deliveryKeyPrefix+id, 1, c.ttl).Result()
	if err != nil {
		return false, err
	}
	return !stored, nil
}

var _ ports.DeliveryCache = (*RedisDeliveryCache)(nil)
