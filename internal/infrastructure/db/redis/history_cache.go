package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

const (
	historyKeyPrefix    = "history:"
	generationKeyPrefix = "history:gen:"
)

// HistoryCache keeps each user's computed metric history as a JSON value
// next to a write generation counter.
// Key format: history:<user_id>, history:gen:<user_id>
type HistoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHistoryCache(client *redis.Client, ttl time.Duration) *HistoryCache {
	return &HistoryCache{client: client, ttl: ttl}
}

// Get returns ok=false on a cache miss.
func (c *HistoryCache) Get(ctx context.Context, userID string) (domain.MetricHistory, bool, error) {
	const op = "HistoryCache.Get"

	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	var history domain.MetricHistory
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, false, fmt.Errorf("%s: decode: %w", op, err)
	}
	return history, true, nil
}

// Generation returns 0 for a user that was never invalidated.
func (c *HistoryCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("HistoryCache.Generation: %w", err)
	}
	return gen, nil
}

// Set writes the history under WATCH on the generation key, so an
// Invalidate landing between the check and the write aborts it.
func (c *HistoryCache) Set(ctx context.Context, userID string, gen int64, history domain.MetricHistory) (bool, error) {
	const op = "HistoryCache.Set"

	raw, err := json.Marshal(history)
	if err != nil {
		return false, fmt.Errorf("%s: encode: %w", op, err)
	}

	genKey := c.generationKey(userID)
	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(userID), raw, c.ttl)
			return nil
		}); err != nil {
			return err
		}
		stored = true
		return nil
	}, genKey)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return stored, nil
}

// Invalidate advances the generation and drops the cached value atomically.
func (c *HistoryCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(userID))
		pipe.Del(ctx, c.key(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("HistoryCache.Invalidate: %w", err)
	}
	return nil
}

func (c *HistoryCache) key(userID string) string {
	return historyKeyPrefix + userID
}

func (c *HistoryCache) generationKey(userID string) string {
	return generationKeyPrefix + userID
}
