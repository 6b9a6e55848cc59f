/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the yield-engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env honored, defaults otherwise)
  2. Initialize zap logger
  3. Initialize SQLite store and seed the default miner catalog
  4. Wire domain service + settlement engine
  5. Start HTTP server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  DATABASE_PATH=./data/yield.db ./server

  # Run with in-memory database on another port
  DATABASE_PATH=:memory: PORT=3000 ./server

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/yield-engine/api"
	"github.com/warp/yield-engine/config"
	"github.com/warp/yield-engine/invest"
	"github.com/warp/yield-engine/notify"
	"github.com/warp/yield-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	if err := seedMiners(context.Background(), store); err != nil {
		logger.Warn("failed to seed miner catalog", zap.Error(err))
	}

	// Wire domain service, settlement engine and HTTP surface
	notifier := notify.NewLogger(logger)
	service := invest.NewService(store, store, notifier, logger, cfg.Terms)
	handler := api.NewHandler(service, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("db", cfg.DatabasePath),
			zap.String("rate_percent", cfg.Terms.Rate.String()),
			zap.Int("installments", cfg.Terms.Installments))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// seedMiners installs the default product catalog on an empty database.
func seedMiners(ctx context.Context, store *sqlite.Store) error {
	existing, err := store.ListMiners(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	tiers := func(values ...int64) []decimal.Decimal {
		out := make([]decimal.Decimal, len(values))
		for i, v := range values {
			out[i] = decimal.NewFromInt(v)
		}
		return out
	}

	defaults := []*invest.Miner{
		{Name: "antminer-s9", AcceptedCapitals: tiers(10, 20)},
		{Name: "antminer-s19", AcceptedCapitals: tiers(50, 100, 200)},
		{Name: "whatsminer-m30", AcceptedCapitals: tiers(100, 250, 500)},
		{Name: "avalon-a12", AcceptedCapitals: tiers(500, 1000)},
	}
	for _, m := range defaults {
		if err := store.PutMiner(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
