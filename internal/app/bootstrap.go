// Package app orchestrates startup: config, logging, storage, state
// recovery and wiring of the trading core.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"papertrader/internal/engine"
	"papertrader/internal/event"
	"papertrader/internal/infra"
	"papertrader/internal/ledger"
	"papertrader/internal/policy"
	"papertrader/internal/pricing"
	"papertrader/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config    *infra.Config
	Store     *storage.TradeStore
	Trader    *engine.Trader
	Refresher *engine.Refresher
	Stream    *pricing.BinanceStream // nil unless provider is binance
	unlock    func()
	busDone   chan struct{}
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization.
func (b *Bootstrap) Initialize(ctx context.Context) error {
	// .env is optional; real env vars still win.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		slog.Info("no config file found, using defaults")
		cfg = infra.DefaultConfig()
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	infra.PrintBanner(cfg)

	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data")
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	dbPath := cfg.Storage.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "trades.db")
	}
	store, err := storage.NewTradeStore(dbPath)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ TradeStore initialized (WAL-mode)", "path", dbPath)

	led, err := b.restoreLedger(ctx)
	if err != nil {
		return err
	}

	tradeLog := ledger.NewTradeLog(store)
	persisted, err := store.LoadTrades(ctx)
	if err != nil {
		return fmt.Errorf("failed to load trade history: %w", err)
	}
	tradeLog.Load(persisted)
	if len(persisted) > 0 {
		slog.Info("✅ Trade history restored", "trades", len(persisted))
	}

	prices, err := b.buildPriceSource()
	if err != nil {
		return err
	}

	bus := event.NewBus()
	b.Trader = engine.NewTrader(led, tradeLog, policy.NewSizer(cfg.Trading.MaxRiskPerTrade), prices, bus, engine.Config{
		MinConfidence:             cfg.Trading.MinConfidence,
		StopLossPct:               cfg.Trading.StopLossPct,
		TakeProfitConfidenceScale: cfg.Trading.TakeProfitConfidenceScale,
	})
	b.Refresher = engine.NewRefresher(b.Trader, time.Duration(cfg.Trading.RefreshIntervalSec)*time.Second)

	b.watchEvents(ctx)

	slog.Info("✅ Trading core wired",
		"initial_balance", cfg.Trading.InitialBalance,
		"max_positions", cfg.Trading.MaxPositions,
		"provider", cfg.Pricing.Provider)
	return nil
}

// restoreLedger rebuilds the ledger from the last persisted snapshot, or
// starts fresh from the configured initial balance.
func (b *Bootstrap) restoreLedger(ctx context.Context) (*ledger.Ledger, error) {
	led := ledger.New(decimal.NewFromFloat(b.Config.Trading.InitialBalance), b.Config.Trading.MaxPositions)

	cash, positions, ok, err := b.Store.LoadLedgerState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	if !ok {
		return led, nil
	}

	cashDec, err := decimal.NewFromString(cash)
	if err != nil {
		return nil, fmt.Errorf("corrupt cash snapshot %q: %w", cash, err)
	}
	led.Restore(cashDec, positions)
	slog.Info("✅ Ledger state restored",
		"cash", cash,
		"open_positions", len(positions))
	return led, nil
}

func (b *Bootstrap) buildPriceSource() (pricing.Source, error) {
	cacheTTL := time.Duration(b.Config.Pricing.CacheTTLSec) * time.Second

	switch strings.ToLower(b.Config.Pricing.Provider) {
	case "binance":
		b.Stream = pricing.NewBinanceStream(b.Config.Pricing.Symbols)
		return b.Stream, nil
	case "coingecko":
		return pricing.NewCached(pricing.NewCoinGeckoWithURL(b.Config.Pricing.APIURL), cacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown pricing provider: %s", b.Config.Pricing.Provider)
	}
}

// watchEvents persists a ledger snapshot after every open/close so a crash
// or restart resumes from the latest state.
func (b *Bootstrap) watchEvents(ctx context.Context) {
	events := b.Trader.Bus().Subscribe(64)
	b.busDone = make(chan struct{})

	go func() {
		defer close(b.busDone)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				switch ev.GetType() {
				case event.EvPositionOpened, event.EvPositionClosed:
					b.saveSnapshot(ctx)
				}
			}
		}
	}()
}

func (b *Bootstrap) saveSnapshot(ctx context.Context) {
	led := b.Trader.Ledger()
	if err := b.Store.SaveLedgerState(ctx, led.CashBalance().String(), led.OpenPositions()); err != nil {
		slog.Warn("failed to persist ledger snapshot", slog.Any("error", err))
	}
}

// Shutdown releases resources in reverse order of acquisition.
func (b *Bootstrap) Shutdown(ctx context.Context) {
	if b.Refresher != nil {
		b.Refresher.Stop()
	}
	if b.Stream != nil {
		b.Stream.Stop()
	}
	if b.Trader != nil {
		b.saveSnapshot(ctx)
		b.Trader.Bus().Close()
	}
	if b.busDone != nil {
		<-b.busDone
	}
	if b.Store != nil {
		b.Store.Close()
	}
	if b.unlock != nil {
		b.unlock()
	}
}
