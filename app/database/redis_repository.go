package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ RelayedItemRepository = (*RedisRelayedItemRepository)(nil)

const relayedKeyPrefix = "relayed:"

// RedisRelayedItemRepository is an alternative relayed item store backed by
// Redis, for deployments that already run one. Records share the SQLite
// schema's fields, stored as a hash per item.
type RedisRelayedItemRepository struct {
	client *redis.Client
}

func NewRedisRelayedItemRepository(addr string) (*RedisRelayedItemRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRelayedItemRepository{client: client}, nil
}

func (r *RedisRelayedItemRepository) Has(ctx context.Context, itemID string) (bool, error) {
	n, err := r.client.Exists(ctx, relayedKeyPrefix+itemID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check relayed item: %w", err)
	}
	return n > 0, nil
}

func (r *RedisRelayedItemRepository) MarkSent(ctx context.Context, itemID, headline string, categoryTags []string) error {
	key := relayedKeyPrefix + itemID

	// HSetNX on the id field keeps the first relayed_at; repeated marks of
	// the same item only rewrite idempotent metadata.
	pipe := r.client.TxPipeline()
	pipe.HSetNX(ctx, key, "relayed_at", time.Now().UTC().Format(time.RFC3339))
	pipe.HSet(ctx, key, "headline", headline, "category_tags", strings.Join(categoryTags, ","))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark item sent: %w", err)
	}
	return nil
}

func (r *RedisRelayedItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, relayedKeyPrefix+"*", 1000).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to count relayed items: %w", err)
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

func (r *RedisRelayedItemRepository) Close() error {
	return r.client.Close()
}
