package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	orderspostgres "github.com/vendibd/vendi-server/internal/domains/orders/adapters/persistence/postgres"
	platformpostgres "github.com/vendibd/vendi-server/internal/platform/postgres"
)

// defaultStaleAfter is how long a cash-capture session may sit untouched before
// the order is returned to pending.
const defaultStaleAfter = 10 * time.Minute

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set; cannot revert stale captures")
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	cutoff := time.Now().UTC().Add(-staleAfterFromEnv())
	repo := orderspostgres.NewRepository(db)
	reverted, err := repo.RevertStaleCaptures(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to revert stale captures: %v", err)
	}
	logger.Info("stale capture revert completed", slog.Int64("reverted", reverted), slog.Time("cutoff", cutoff))
}

func staleAfterFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("CAPTURE_STALE_MINUTES"))
	if raw == "" {
		return defaultStaleAfter
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return defaultStaleAfter
	}
	return time.Duration(minutes) * time.Minute
}
