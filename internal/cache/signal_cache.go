// Package cache provides a Redis-backed TTL cache for generated trade
// signals, keyed by symbol.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/quantrow/signalrun/internal/signal"
)

const keyPrefix = "signalrun:signal:"

// SignalCache caches the latest trade signal per symbol with a TTL.
type SignalCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSignalCache creates a cache over the given Redis client.
func NewSignalCache(client *redis.Client, ttl time.Duration) *SignalCache {
	return &SignalCache{client: client, ttl: ttl}
}

// Get returns the cached signal for the symbol, if present and fresh.
func (c *SignalCache) Get(ctx context.Context, symbol string) (*signal.TradeSignal, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+symbol).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", symbol, err)
	}

	var sig signal.TradeSignal
	if err := json.Unmarshal([]byte(raw), &sig); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", symbol, err)
	}
	return &sig, true, nil
}

// Set stores the signal under its symbol for the configured TTL.
func (c *SignalCache) Set(ctx context.Context, sig *signal.TradeSignal) error {
	raw, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", sig.Symbol, err)
	}
	if err := c.client.Set(ctx, keyPrefix+sig.Symbol, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", sig.Symbol, err)
	}
	return nil
}

// Delete drops the cached signal for the symbol.
func (c *SignalCache) Delete(ctx context.Context, symbol string) error {
	if err := c.client.Del(ctx, keyPrefix+symbol).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", symbol, err)
	}
	return nil
}
