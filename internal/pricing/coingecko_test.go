package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"papertrader/internal/domain"
)

func TestCoinGecko_Price(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "bitcoin" {
			t.Errorf("ids = %q, want bitcoin", got)
		}
		if got := r.URL.Query().Get("vs_currencies"); got != "usd" {
			t.Errorf("vs_currencies = %q, want usd", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":45000.12}}`))
	}))
	defer server.Close()

	client := NewCoinGeckoWithURL(server.URL)

	price, err := client.Price(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	want := decimal.RequireFromString("45000.12")
	if !price.Equal(want) {
		t.Errorf("price = %s, want %s", price, want)
	}
}

func TestCoinGecko_UnknownSymbolFallsBackToLowercase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "pepe" {
			t.Errorf("ids = %q, want pepe", got)
		}
		w.Write([]byte(`{"pepe":{"usd":0.0000012}}`))
	}))
	defer server.Close()

	client := NewCoinGeckoWithURL(server.URL)

	price, err := client.Price(context.Background(), "PEPE")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("0.0000012")) {
		t.Errorf("price = %s, want 0.0000012", price)
	}
}

func TestCoinGecko_MissingQuoteIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewCoinGeckoWithURL(server.URL)

	_, err := client.Price(context.Background(), "BTC")
	if !errors.Is(err, domain.ErrPriceUnavailable) {
		t.Errorf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestCoinGecko_OpenBreakerShortCircuits(t *testing.T) {
	client := NewCoinGeckoWithURL("http://127.0.0.1:0") // unreachable

	// Drive the breaker open without waiting through real backoff delays.
	for i := 0; i < 5; i++ {
		client.breaker.RecordFailure()
	}

	_, err := client.Price(context.Background(), "BTC")
	if !errors.Is(err, domain.ErrPriceUnavailable) {
		t.Fatalf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestCoinID(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"BTC", "bitcoin"},
		{"btc", "bitcoin"},
		{" ETH ", "ethereum"},
		{"AVAX", "avalanche-2"},
		{"UNKNOWN", "unknown"},
	}

	for _, tt := range tests {
		if got := coinID(tt.symbol); got != tt.want {
			t.Errorf("coinID(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}
