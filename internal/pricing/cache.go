package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCacheTTL matches the staleness the trading core tolerates.
const DefaultCacheTTL = 30 * time.Second

type cacheEntry struct {
	price   decimal.Decimal
	expires time.Time
}

// Cached wraps a Source with a per-symbol TTL cache so a refresh pass over
// many positions does not hammer the upstream API.
type Cached struct {
	upstream Source
	ttl      time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCached creates a caching wrapper. Non-positive ttl falls back to
// DefaultCacheTTL.
func NewCached(upstream Source, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		upstream: upstream,
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
		now:      time.Now,
	}
}

// Price returns the cached price when fresh, otherwise asks the upstream
// and caches the result. Upstream failures are not cached.
func (c *Cached) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	now := c.now()

	c.mu.Lock()
	entry, ok := c.entries[symbol]
	c.mu.Unlock()

	if ok && now.Before(entry.expires) {
		return entry.price, nil
	}

	price, err := c.upstream.Price(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	c.mu.Lock()
	c.entries[symbol] = cacheEntry{price: price, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return price, nil
}
