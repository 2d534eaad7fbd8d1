package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"papertrader/internal/domain"
)

// countingSource counts upstream hits and serves a fixed price.
type countingSource struct {
	calls int
	price decimal.Decimal
	err   error
}

func (s *countingSource) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.price, nil
}

func TestCached_ServesFromCacheWithinTTL(t *testing.T) {
	upstream := &countingSource{price: decimal.NewFromInt(45000)}
	cached := NewCached(upstream, 30*time.Second)

	for i := 0; i < 5; i++ {
		price, err := cached.Price(context.Background(), "BTC")
		if err != nil {
			t.Fatalf("Price: %v", err)
		}
		if !price.Equal(decimal.NewFromInt(45000)) {
			t.Fatalf("price = %s, want 45000", price)
		}
	}

	if upstream.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", upstream.calls)
	}
}

func TestCached_RefetchesAfterExpiry(t *testing.T) {
	upstream := &countingSource{price: decimal.NewFromInt(100)}
	cached := NewCached(upstream, 30*time.Second)

	clock := time.Now()
	cached.now = func() time.Time { return clock }

	cached.Price(context.Background(), "ETH")
	clock = clock.Add(31 * time.Second)
	cached.Price(context.Background(), "ETH")

	if upstream.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", upstream.calls)
	}
}

func TestCached_SymbolsCachedIndependently(t *testing.T) {
	upstream := &countingSource{price: decimal.NewFromInt(100)}
	cached := NewCached(upstream, time.Minute)

	cached.Price(context.Background(), "BTC")
	cached.Price(context.Background(), "ETH")

	if upstream.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", upstream.calls)
	}
}

func TestCached_ErrorsNotCached(t *testing.T) {
	upstream := &countingSource{err: domain.ErrPriceUnavailable}
	cached := NewCached(upstream, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := cached.Price(context.Background(), "BTC")
		if !errors.Is(err, domain.ErrPriceUnavailable) {
			t.Fatalf("err = %v, want ErrPriceUnavailable", err)
		}
	}

	if upstream.calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (errors must not be cached)", upstream.calls)
	}
}
