package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/makerbot/config"
	"github.com/alejandrodnm/makerbot/internal/adapters/notify"
	"github.com/alejandrodnm/makerbot/internal/adapters/storage"
)

const reportLimit = 20

// runReport imprime el resumen del ledger local y termina. No toca la
// red: todo sale del archivo SQLite.
func runReport(cfg *config.Config) {
	store, err := storage.NewSQLiteLedger(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open ledger", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	orders, err := store.RecentOrders(ctx, reportLimit)
	if err != nil {
		slog.Error("failed to read orders", "err", err)
		os.Exit(1)
	}
	fills, err := store.RecentFills(ctx, reportLimit)
	if err != nil {
		slog.Error("failed to read fills", "err", err)
		os.Exit(1)
	}
	dailies, err := store.Dailies(ctx)
	if err != nil {
		slog.Error("failed to read daily activity", "err", err)
		os.Exit(1)
	}

	notify.NewConsole().PrintReport(orders, fills, dailies)
}
