package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

const keyPrefix = "jaygoga:statement"

// RedisStatementCache stores statements as JSON under a per-owner generation number.
// Bumping the generation orphans the old entries, which then expire on their TTL.
type RedisStatementCache struct {
	client *redis.Client
}

func NewRedisStatementCache(client *redis.Client) *RedisStatementCache {
	return &RedisStatementCache{client: client}
}

func NewRedisClient(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (c *RedisStatementCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisStatementCache) Get(ctx context.Context, ownerID string, key string) (*domain.Statement, Generation, bool, error) {
	gen, err := c.generation(ctx, ownerID)
	if err != nil {
		return nil, 0, false, err
	}

	val, err := c.client.Get(ctx, entryKey(ownerID, gen, key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, err
	}

	var statement domain.Statement
	if err := json.Unmarshal([]byte(val), &statement); err != nil {
		return nil, gen, false, err
	}
	return &statement, gen, true, nil
}

// Set writes under gen. When the owner was invalidated since gen was read the entry is
// orphaned and only lives until its TTL.
func (c *RedisStatementCache) Set(ctx context.Context, ownerID string, key string, gen Generation, value *domain.Statement, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, entryKey(ownerID, gen, key), payload, ttl).Err()
}

func (c *RedisStatementCache) Invalidate(ctx context.Context, ownerID string) error {
	return c.client.Incr(ctx, generationKey(ownerID)).Err()
}

func (c *RedisStatementCache) generation(ctx context.Context, ownerID string) (Generation, error) {
	gen, err := c.client.Get(ctx, generationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return Generation(gen), err
}

func generationKey(ownerID string) string {
	return fmt.Sprintf("%s:%s:gen", keyPrefix, ownerID)
}

func entryKey(ownerID string, gen Generation, key string) string {
	return fmt.Sprintf("%s:%s:%d:%s", keyPrefix, ownerID, gen, key)
}
