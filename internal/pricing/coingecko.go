package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"papertrader/internal/domain"
	"papertrader/internal/infra"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3/simple/price"

// coinIDs maps ticker symbols to CoinGecko coin ids for the simple-price
// endpoint. Unknown symbols fall back to the lowercased symbol, which works
// for coins whose id matches their ticker.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"LTC":   "litecoin",
	"BCH":   "bitcoin-cash",
	"ATOM":  "cosmos",
	"UNI":   "uniswap",
	"NEAR":  "near",
}

// CoinGecko fetches spot prices in USD from the CoinGecko simple-price API.
// A token bucket keeps requests under the free-tier quota and a circuit
// breaker short-circuits calls while the API is failing.
type CoinGecko struct {
	apiURL     string
	httpClient *http.Client
	limiter    *infra.RateLimiter
	breaker    *infra.CircuitBreaker
}

// NewCoinGecko creates a client against the public CoinGecko API.
func NewCoinGecko() *CoinGecko {
	return &CoinGecko{
		apiURL:     defaultCoinGeckoURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Free tier allows roughly 30 calls/min.
		limiter: infra.NewRateLimiter(5, 0.5),
		breaker: infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("coingecko")),
	}
}

// NewCoinGeckoWithURL creates a client against a custom endpoint (tests).
func NewCoinGeckoWithURL(apiURL string) *CoinGecko {
	c := NewCoinGecko()
	if apiURL != "" {
		c.apiURL = apiURL
	}
	return c
}

// Price implements Source. It retries transient failures with exponential
// backoff and wraps terminal failures in domain.ErrPriceUnavailable.
func (c *CoinGecko) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if !c.breaker.Allow() {
		return decimal.Zero, fmt.Errorf("%w: %s: circuit open", domain.ErrPriceUnavailable, symbol)
	}

	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			delay := infra.CalculateBackoff(i - 1)
			select {
			case <-ctx.Done():
				return decimal.Zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		price, err := c.doFetch(ctx, symbol)
		if err == nil {
			c.breaker.RecordSuccess()
			return price, nil
		}
		lastErr = err
		slog.Warn("price fetch attempt failed",
			slog.String("symbol", symbol),
			slog.Int("attempt", i+1),
			slog.Any("error", err))
	}

	c.breaker.RecordFailure()
	return decimal.Zero, fmt.Errorf("%w: %s: %v", domain.ErrPriceUnavailable, symbol, lastErr)
}

func (c *CoinGecko) doFetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	c.limiter.Wait()

	id := coinID(symbol)

	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}

	// Response shape: {"bitcoin":{"usd":45000.12}}
	var data map[string]map[string]json.Number
	if err := json.Unmarshal(body, &data); err != nil {
		return decimal.Zero, err
	}

	quote, ok := data[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("no quote for %s", id)
	}
	raw, ok := quote["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("no usd quote for %s", id)
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad price %q: %w", raw.String(), err)
	}
	if price.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive price %s", price)
	}

	return price, nil
}

func coinID(symbol string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if id, ok := coinIDs[sym]; ok {
		return id
	}
	return strings.ToLower(sym)
}
