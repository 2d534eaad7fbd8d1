package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"papertrader/internal/domain"
	"papertrader/internal/infra"
)

const defaultBinanceWSURL = "wss://stream.binance.com:9443/stream"

// binanceStreamMsg is a combined-stream envelope carrying a miniTicker.
type binanceStreamMsg struct {
	Stream string `json:"stream"`
	Data   struct {
		Symbol string `json:"s"`
		Close  string `json:"c"`
	} `json:"data"`
}

// BinanceStream keeps a live symbol to price table fed by the Binance
// miniTicker WebSocket stream. It implements both infra.WebSocketHandler
// (feed plumbing) and Source (lookups against the live table).
//
// Symbols are plain tickers (BTC); the stream trades USDT pairs, so BTC
// subscribes btcusdt@miniTicker. A price older than maxAge is treated as
// unavailable so a dead feed does not silently serve stale quotes.
type BinanceStream struct {
	wsURL   string
	symbols []string
	maxAge  time.Duration

	mu     sync.RWMutex
	prices map[string]tickedPrice

	worker *infra.BaseWSWorker
}

type tickedPrice struct {
	price decimal.Decimal
	at    time.Time
}

// NewBinanceStream creates a stream for the given ticker symbols.
func NewBinanceStream(symbols []string) *BinanceStream {
	b := &BinanceStream{
		wsURL:   defaultBinanceWSURL,
		symbols: symbols,
		maxAge:  2 * time.Minute,
		prices:  make(map[string]tickedPrice),
	}
	b.worker = infra.NewBaseWSWorker(b)
	return b
}

// Start connects the feed. The worker reconnects with backoff on failure.
func (b *BinanceStream) Start(ctx context.Context) {
	b.worker.Start(ctx)
}

// Stop tears down the connection and waits for the worker to exit.
func (b *BinanceStream) Stop() {
	b.worker.Stop()
}

// Price implements Source against the live table.
func (b *BinanceStream) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	b.mu.RLock()
	tp, ok := b.prices[sym]
	b.mu.RUnlock()

	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s: no ticker received", domain.ErrPriceUnavailable, symbol)
	}
	if time.Since(tp.at) > b.maxAge {
		return decimal.Zero, fmt.Errorf("%w: %s: ticker stale", domain.ErrPriceUnavailable, symbol)
	}
	return tp.price, nil
}

// GetURL implements infra.WebSocketHandler.
func (b *BinanceStream) GetURL() string {
	streams := make([]string, 0, len(b.symbols))
	for _, s := range b.symbols {
		streams = append(streams, strings.ToLower(strings.TrimSpace(s))+"usdt@miniTicker")
	}
	return b.wsURL + "?streams=" + strings.Join(streams, "/")
}

// ID implements infra.WebSocketHandler.
func (b *BinanceStream) ID() string { return "BINANCE" }

// OnConnect implements infra.WebSocketHandler. Subscription rides the URL,
// so nothing to send.
func (b *BinanceStream) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	return nil
}

// OnMessage implements infra.WebSocketHandler.
func (b *BinanceStream) OnMessage(ctx context.Context, msg []byte) {
	var m binanceStreamMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		slog.Warn("binance message parse failed", slog.Any("error", err))
		return
	}
	if m.Data.Symbol == "" || m.Data.Close == "" {
		return
	}

	price, err := decimal.NewFromString(m.Data.Close)
	if err != nil || price.Sign() <= 0 {
		return
	}

	sym := strings.ToUpper(strings.TrimSuffix(m.Data.Symbol, "USDT"))

	b.mu.Lock()
	b.prices[sym] = tickedPrice{price: price, at: time.Now()}
	b.mu.Unlock()
}

// OnPing implements infra.WebSocketHandler. Binance pings us; answering
// with a pong control frame keeps the connection alive.
func (b *BinanceStream) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PongMessage, nil, time.Now().Add(5*time.Second))
}
