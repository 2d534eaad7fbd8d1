package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"papertrader/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(ctx); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown(context.Background())

	if bootstrap.Stream != nil {
		bootstrap.Stream.Start(ctx)
		slog.InfoContext(ctx, "✅ Binance price stream started",
			slog.Int("symbols", len(bootstrap.Config.Pricing.Symbols)))
	}

	bootstrap.Refresher.Start(ctx)
	slog.InfoContext(ctx, "✅ Refresh loop started",
		slog.Int("interval_sec", bootstrap.Config.Trading.RefreshIntervalSec))

	slog.InfoContext(ctx, "✨ Paper trader operational. Press Ctrl+C to exit.")

	<-ctx.Done()

	slog.Info("👋 Shutting down gracefully...")
}
